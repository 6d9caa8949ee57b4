package enums

import "fmt"

// ImageStatus represents the moderation state of a marketplace image.
type ImageStatus string

const (
	ImageStatusApproved ImageStatus = "Approved"
	ImageStatusPending  ImageStatus = "Pending"
	ImageStatusRejected ImageStatus = "Rejected"
)

var validImageStatuses = []ImageStatus{
	ImageStatusApproved,
	ImageStatusPending,
	ImageStatusRejected,
}

// String implements fmt.Stringer.
func (s ImageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ImageStatus.
func (s ImageStatus) IsValid() bool {
	for _, candidate := range validImageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseImageStatus converts raw input into an ImageStatus.
func ParseImageStatus(value string) (ImageStatus, error) {
	for _, candidate := range validImageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid image status %q", value)
}
