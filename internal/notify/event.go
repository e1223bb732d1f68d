package notify

import "context"

// Event describes a single new-classmate notification to be emailed.
// Dispatch is best-effort: producers and consumers log failures and never
// feed them back into the request that triggered the fan-out.
type Event struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	ClassmateName  string `json:"classmateName"`
	CourseID       string `json:"courseId"`
	SectionCode    string `json:"sectionCode"`
}

// Publisher hands an event to the notification pipeline.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
