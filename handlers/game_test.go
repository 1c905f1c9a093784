package handlers

import (
	"errors"
	"testing"

	"cyber-battleship/models"
	"cyber-battleship/services"
)

func TestValidateSubmissionShapes(t *testing.T) {
	valid := []models.SubmissionRequest{
		{TeamID: "ALPHA", Row: "A", Column: 5, AttackType: models.AttackXSS},
		{TeamID: "ALPHA", Row: "J"},
		{TeamID: "ALPHA", Column: 10},
		{TeamID: "ALPHA", Row: "B", AttackType: models.AttackDDoS},
	}
	for _, req := range valid {
		if _, _, err := validateSubmission(req); err != nil {
			t.Errorf("validateSubmission(%+v) = %v, want ok", req, err)
		}
	}

	invalid := []models.SubmissionRequest{
		{Row: "A", Column: 5},                                 // missing team
		{TeamID: "ALPHA"},                                     // nothing at all
		{TeamID: "ALPHA", AttackType: models.AttackXSS},       // type alone names no cell
		{TeamID: "ALPHA", Row: "Z", Column: 5},                // bad row
		{TeamID: "ALPHA", Row: "A", Column: 11},               // bad column
		{TeamID: "ALPHA", Row: "A", AttackType: "tailgating"}, // unknown type
	}
	for _, req := range invalid {
		var validation *services.ValidationError
		if _, _, err := validateSubmission(req); !errors.As(err, &validation) {
			t.Errorf("validateSubmission(%+v) = %v, want ValidationError", req, err)
		}
	}
}
