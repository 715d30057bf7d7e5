// Package classifier infers a job-application status from email text.
//
// The classifier is a deterministic keyword/regex scorer, not a model:
// every keyword hit adds a fixed increment to the confidence score and
// sets the status to that keyword's bucket, so a later bucket's hit
// overwrites an earlier one while all hits keep accumulating. The score
// is a corroboration count, not a probability, and is deliberately left
// uncapped: several hits say more than one, and the ingest threshold
// depends on that distinction.
package classifier

import (
	"regexp"
	"strings"

	"jobtrail-backend/internal/mailsync/domain"
)

// Result is the ephemeral outcome of classifying one message. It is
// folded into the TrackedMessage row on ingestion, never persisted
// on its own.
type Result struct {
	Status     domain.EmailJobStatus // empty when no status keyword hit
	Confidence float64
	Company    string
	Position   string
}

const (
	keywordIncrement    = 0.2
	extractionIncrement = 0.1
)

// statusBucket pairs a status with its keyword list. Buckets are
// scanned in declaration order.
type statusBucket struct {
	status   domain.EmailJobStatus
	keywords []string
}

var statusBuckets = []statusBucket{
	{domain.EmailStatusApplied, []string{
		"thank you for applying",
		"we received your application",
		"application has been received",
		"your application was sent",
		"applied successfully",
	}},
	{domain.EmailStatusInterview, []string{
		"interview",
		"phone screen",
		"technical screen",
		"schedule a call",
		"meet the team",
	}},
	{domain.EmailStatusRejected, []string{
		"unfortunately",
		"not moving forward",
		"other candidates",
		"we regret to inform",
		"not selected",
		"decided not to proceed",
	}},
	{domain.EmailStatusOffer, []string{
		"pleased to offer",
		"offer letter",
		"job offer",
		"congratulations",
		"compensation package",
		"welcome aboard",
	}},
}

var (
	companyFromRe = regexp.MustCompile(`\bfrom ([a-z][a-z0-9&\-]+)\b`)
	companyTeamRe = regexp.MustCompile(`\b([a-z][a-z0-9&\-]+) team\b`)
	positionRe    = regexp.MustCompile(`\b(?:position|role) of ([a-z][a-z0-9+#/\-]*(?: [a-z][a-z0-9+#/\-]*){0,3})`)
)

// Classify scores the lower-cased subject+body against the keyword
// tables and extraction regexes. Pure: same input, same output.
func Classify(subject, body string) Result {
	text := strings.ToLower(subject + " " + body)

	var res Result
	for _, bucket := range statusBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				res.Confidence += keywordIncrement
				res.Status = bucket.status
			}
		}
	}

	if m := companyFromRe.FindStringSubmatch(text); m != nil {
		res.Company = m[1]
		res.Confidence += extractionIncrement
	} else if m := companyTeamRe.FindStringSubmatch(text); m != nil {
		res.Company = m[1]
		res.Confidence += extractionIncrement
	}

	if m := positionRe.FindStringSubmatch(text); m != nil {
		res.Position = m[1]
		res.Confidence += extractionIncrement
	}

	return res
}
