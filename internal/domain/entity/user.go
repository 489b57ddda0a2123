package entity

import "time"

const (
	UserTypeUser       = "user"
	UserTypeConsultant = "consultant"
	UserTypeResident   = "resident"
	UserTypeGuest      = "guest"
)

type User struct {
	ID               string `json:"id" firestore:"id"`
	Email            string `json:"email,omitempty" firestore:"email,omitempty"`
	DisplayName      string `json:"display_name" firestore:"displayName"`
	MobileNumber     string `json:"mobile_number,omitempty" firestore:"mobileNumber,omitempty"`
	UserType         string `json:"user_type" firestore:"userType"`
	Country          string `json:"country,omitempty" firestore:"country,omitempty"`
	ReasonForJoining string `json:"reason_for_joining,omitempty" firestore:"reasonForJoining,omitempty"`
	SelectedCategory string `json:"selected_category,omitempty" firestore:"selectedCategory,omitempty"`
	Specialization   string `json:"specialization,omitempty" firestore:"specialization,omitempty"`

	// MessageCount only grows for guest users; it backs the guest send cap.
	MessageCount int `json:"message_count,omitempty" firestore:"messageCount,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsGuest() bool {
	return u.UserType == UserTypeGuest
}

// IsConsultant reports whether the user is an Industry Expert. Consultants
// may only send messages in reply to existing ones.
func (u *User) IsConsultant() bool {
	return u.UserType == UserTypeConsultant
}
