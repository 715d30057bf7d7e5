package classifier

import (
	"math"
	"reflect"
	"testing"

	"jobtrail-backend/internal/mailsync/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		subject        string
		body           string
		wantStatus     domain.EmailJobStatus
		wantConfidence float64
		wantCompany    string
		wantPosition   string
	}{
		{
			name:           "application confirmation",
			subject:        "Thank you for applying to Acme Corp",
			body:           "Your application submitted on Monday is being reviewed.",
			wantStatus:     domain.EmailStatusApplied,
			wantConfidence: 0.2,
		},
		{
			name:           "interview invitation",
			subject:        "Next steps",
			body:           "We would like to invite you to an interview. Please schedule a call with us.",
			wantStatus:     domain.EmailStatusInterview,
			wantConfidence: 0.4,
		},
		{
			name:           "rejection",
			subject:        "Your application",
			body:           "Unfortunately we have decided to move ahead with other candidates.",
			wantStatus:     domain.EmailStatusRejected,
			wantConfidence: 0.4,
		},
		{
			name:           "later bucket overwrites earlier",
			subject:        "Thank you for applying",
			body:           "Congratulations! We are pleased to offer you the job.",
			wantStatus:     domain.EmailStatusOffer,
			wantConfidence: 0.6,
		},
		{
			name:           "no signal",
			subject:        "Lunch on Friday?",
			body:           "Are you free around noon?",
			wantStatus:     "",
			wantConfidence: 0,
		},
		{
			name:           "company extraction adds confidence",
			subject:        "Greetings from globex",
			body:           "We would like to invite you to an interview.",
			wantStatus:     domain.EmailStatusInterview,
			wantConfidence: 0.3,
			wantCompany:    "globex",
		},
		{
			name:           "position extraction adds confidence",
			subject:        "Interview invitation",
			body:           "We are excited about your interest in the role of backend engineer",
			wantStatus:     domain.EmailStatusInterview,
			wantConfidence: 0.3,
			wantPosition:   "backend engineer",
		},
		{
			name:           "confidence is uncapped",
			subject:        "Congratulations from initech",
			body:           "Thank you for applying. After your interview we are pleased to offer you an offer letter for the position of staff engineer",
			wantStatus:     domain.EmailStatusOffer,
			wantConfidence: 1.2,
			wantCompany:    "initech",
			wantPosition:   "staff engineer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.subject, tt.body)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if !almostEqual(got.Confidence, tt.wantConfidence) {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.Company != tt.wantCompany {
				t.Errorf("Company = %q, want %q", got.Company, tt.wantCompany)
			}
			if got.Position != tt.wantPosition {
				t.Errorf("Position = %q, want %q", got.Position, tt.wantPosition)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	subject := "Thank you for applying to Acme Corp"
	body := "We would like to invite you to an interview for the role of backend engineer"

	first := Classify(subject, body)
	for i := 0; i < 10; i++ {
		if got := Classify(subject, body); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Classify() = %+v, want %+v", i, got, first)
		}
	}
}
