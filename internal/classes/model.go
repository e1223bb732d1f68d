package classes

// ClassInput is a single enrollment as submitted by the client, before
// normalization.
type ClassInput struct {
	CourseID       string `json:"courseId" validate:"required"`
	SectionCode    string `json:"sectionCode" validate:"required"`
	DiscussionCode string `json:"discussionCode"`
}

// UpdateClassesRequest replaces the caller's full class list.
type UpdateClassesRequest struct {
	Classes []ClassInput `json:"classes" validate:"required,dive"`
}

// NotifyRequest triggers the new-classmate notification fan-out for one
// course the caller just added.
type NotifyRequest struct {
	CourseID    string `json:"courseId" validate:"required"`
	SectionCode string `json:"sectionCode" validate:"required"`
}

// ClassmateSummary is the public projection of a matched classmate. The
// password hash and confirmation token never appear here.
type ClassmateSummary struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	Major          string `json:"major"`
	Year           string `json:"year"`
	Gender         string `json:"gender"`
	SectionCode    string `json:"sectionCode"`
	DiscussionCode string `json:"discussionCode,omitempty"`
}

// ClassmatesResponse echoes the canonical identifiers alongside the matches.
type ClassmatesResponse struct {
	CourseID    string             `json:"courseId"`
	SectionCode string             `json:"sectionCode"`
	Classmates  []ClassmateSummary `json:"classmates"`
	Count       int                `json:"count"`
}
