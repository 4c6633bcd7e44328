package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/models"
)

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("champ obligatoire")
	}
	return nil
}

func validDate(s string) error {
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return errors.New("format attendu: AAAA-MM-JJ")
	}
	return nil
}

func optionalDate(s string) error {
	if s == "" {
		return nil
	}
	return validDate(s)
}

func validClock(s string) error {
	if _, err := models.ParseClock(s); err != nil {
		return errors.New("format attendu: HH:MM")
	}
	return nil
}

func newReminderForm(f *ReminderFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Titre").Value(&f.Title).Validate(required),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Médicament", string(models.ReminderMedication)),
					huh.NewOption("Rendez-vous", string(models.ReminderAppointment)),
					huh.NewOption("Analyse", string(models.ReminderAnalysis)),
				).
				Value(&f.Type),
			huh.NewInput().Title("Description").Value(&f.Description),
		),
		huh.NewGroup(
			huh.NewInput().Title("Date (AAAA-MM-JJ)").Value(&f.Date).Validate(validDate),
			huh.NewInput().Title("Heure (HH:MM)").Value(&f.Time).Validate(validClock),
			huh.NewSelect[string]().
				Title("Fréquence").
				Options(
					huh.NewOption("Une fois", string(models.FrequencyOnce)),
					huh.NewOption("Tous les jours", string(models.FrequencyDaily)),
					huh.NewOption("Toutes les semaines", string(models.FrequencyWeekly)),
					huh.NewOption("Tous les mois", string(models.FrequencyMonthly)),
				).
				Value(&f.Frequency),
			huh.NewInput().Title("Date de fin (optionnelle)").Value(&f.EndDate).Validate(optionalDate),
		),
	)
}

func newNoteForm(f *NoteFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Note du jour").Value(&f.Content).Validate(required),
		),
	)
}
