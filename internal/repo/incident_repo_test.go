package repo

import (
	"context"
	"testing"

	"github.com/truescan/go-verify-backend/internal/domain"
)

func TestCreateIncident_OpensWithStatusOpen(t *testing.T) {
	db := newVerifyRepoDB(t, &domain.Incident{})

	inc, err := CreateIncident(context.Background(), db, "LUM-AAA1",
		domain.StateCodeAlreadyUsed, 55, domain.DecisionDoNotUse)
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if inc.ID == "" || inc.Status != domain.StatusOpen {
		t.Fatalf("unexpected incident: %+v", inc)
	}
	if inc.State != domain.StateCodeAlreadyUsed || inc.TrustDecision != domain.DecisionDoNotUse || inc.RiskScore != 55 {
		t.Fatalf("snapshot fields mismatch: %+v", inc)
	}

	var got domain.Incident
	if err := db.First(&got, "id = ?", inc.ID).Error; err != nil {
		t.Fatalf("load created incident: %v", err)
	}
	if got.CodeValue != "LUM-AAA1" || got.Status != domain.StatusOpen {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateIncident_Error_NoTable(t *testing.T) {
	db := newVerifyRepoDB(t /* no migrations */)
	inc, err := CreateIncident(context.Background(), db, "X",
		domain.StateSuspiciousPattern, 90, domain.DecisionReportToNAFDAC)
	if err == nil || inc != nil {
		t.Fatalf("expected error creating without table, got inc=%v err=%v", inc, err)
	}
}

func TestCountOpenIncidents_FiltersByCodeAndStatus(t *testing.T) {
	db := newVerifyRepoDB(t, &domain.Incident{})

	seed := []domain.Incident{
		{ID: "i1", CodeValue: "LUM-AAA1", State: domain.StateCodeAlreadyUsed, TrustDecision: domain.DecisionDoNotUse, Status: domain.StatusOpen},
		{ID: "i2", CodeValue: "LUM-AAA1", State: domain.StateSuspiciousPattern, TrustDecision: domain.DecisionReportToNAFDAC, Status: domain.StatusOpen},
		{ID: "i3", CodeValue: "LUM-AAA1", State: domain.StateCodeAlreadyUsed, TrustDecision: domain.DecisionDoNotUse, Status: domain.StatusResolved},
		{ID: "i4", CodeValue: "LUM-BBB2", State: domain.StateCodeAlreadyUsed, TrustDecision: domain.DecisionDoNotUse, Status: domain.StatusOpen},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed %s: %v", seed[i].ID, err)
		}
	}

	total, err := CountOpenIncidents(context.Background(), db, "LUM-AAA1")
	if err != nil {
		t.Fatalf("CountOpenIncidents: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 open incidents, got %d", total)
	}
}
