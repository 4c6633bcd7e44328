package models

type User struct {
	ID          string   `json:"id"`
	Phone       string   `json:"phone"`
	Name        string   `json:"name,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Pathologies []string `json:"pathologies,omitempty"`
}
