package score

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != nil {
		t.Errorf("Summarize(nil) = %+v, want nil", got)
	}
}

func TestSummarizeAverages(t *testing.T) {
	s := Summarize([]PackageRating{
		{Name: "express", TotalScore: 80, RiskLevel: RiskLow, Hours: 4, TotalCVEs: 3, CriticalCVEs: 1},
		{Name: "lodash", TotalScore: 60, RiskLevel: RiskMedium, Hours: 6, TotalCVEs: 5, CriticalCVEs: 0},
	})
	if s == nil {
		t.Fatal("Summarize returned nil")
	}
	if s.AverageScore != 70 {
		t.Errorf("AverageScore = %d, want 70", s.AverageScore)
	}
	if s.TotalMaintenanceHours != 10 {
		t.Errorf("TotalMaintenanceHours = %d, want 10", s.TotalMaintenanceHours)
	}
	if s.TotalCVEs != 8 {
		t.Errorf("TotalCVEs = %d, want 8", s.TotalCVEs)
	}
	if s.TotalCriticalCVEs != 1 {
		t.Errorf("TotalCriticalCVEs = %d, want 1", s.TotalCriticalCVEs)
	}
	if s.RiskCounts[RiskLow] != 1 || s.RiskCounts[RiskMedium] != 1 {
		t.Errorf("RiskCounts = %v, want one LOW and one MEDIUM", s.RiskCounts)
	}
}

func TestSummarizeHighestRiskTakesFiveLowest(t *testing.T) {
	ratings := []PackageRating{
		{Name: "a", TotalScore: 90},
		{Name: "b", TotalScore: 15},
		{Name: "c", TotalScore: 70},
		{Name: "d", TotalScore: 15},
		{Name: "e", TotalScore: 40},
		{Name: "f", TotalScore: 55},
		{Name: "g", TotalScore: 85},
	}
	s := Summarize(ratings)
	if len(s.HighestRisk) != 5 {
		t.Fatalf("len(HighestRisk) = %d, want 5", len(s.HighestRisk))
	}
	wantOrder := []string{"b", "d", "e", "f", "c"}
	for i, want := range wantOrder {
		if s.HighestRisk[i].Name != want {
			t.Errorf("HighestRisk[%d] = %q, want %q (ties keep encounter order)", i, s.HighestRisk[i].Name, want)
		}
	}
}

func TestSummarizeFewerThanFivePackages(t *testing.T) {
	s := Summarize([]PackageRating{
		{Name: "a", TotalScore: 50},
		{Name: "b", TotalScore: 30},
	})
	if len(s.HighestRisk) != 2 {
		t.Fatalf("len(HighestRisk) = %d, want 2", len(s.HighestRisk))
	}
	if s.HighestRisk[0].Name != "b" {
		t.Errorf("HighestRisk[0] = %q, want %q", s.HighestRisk[0].Name, "b")
	}
}
