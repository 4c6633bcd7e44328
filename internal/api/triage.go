package api

import (
	"context"
	"errors"
	"strings"

	"github.com/machinebox/graphql"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

const aiTriageMutation = `mutation AITriage($symptoms: String!) {
	aiTriage(symptoms: $symptoms) {
		triage {
			id
			symptoms
			severity
			advice
			recommendation
		}
	}
}`

// AITriage submits free-text symptoms and returns the severity assessment.
func (c *Client) AITriage(ctx context.Context, symptoms string) (models.TriageResult, error) {
	if strings.TrimSpace(symptoms) == "" {
		return models.TriageResult{}, apperrors.Invalid(errors.New("symptoms cannot be empty"))
	}

	req := graphql.NewRequest(aiTriageMutation)
	req.Var("symptoms", symptoms)

	var resp struct {
		AITriage struct {
			Triage *models.TriageResult `json:"triage"`
		} `json:"aiTriage"`
	}
	if err := c.run(ctx, "ai triage", req, &resp); err != nil {
		return models.TriageResult{}, err
	}
	if resp.AITriage.Triage == nil {
		return models.TriageResult{}, remoteFailure("ai triage", "server returned no triage")
	}
	t := *resp.AITriage.Triage
	t.Severity = strings.ToLower(t.Severity)
	return t, nil
}
