package entity

import (
	"fmt"
	"time"
)

const (
	CategoryStudy  = "study"
	CategoryTravel = "travel"
	CategoryVisa   = "visa"
)

const (
	RoomTypeGeneral = "general"
	RoomTypeVisa    = "visa"
)

// RoomUser is an ephemeral presence record; it lives only while the user
// holds an open room connection.
type RoomUser struct {
	UID         string    `json:"uid" firestore:"uid"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	UserType    string    `json:"user_type" firestore:"userType"`
	JoinedAt    time.Time `json:"joined_at" firestore:"joinedAt"`
}

// RoomTypeFor returns the room sub-type for a category: visa rooms are kept
// separate from the general discussion rooms.
func RoomTypeFor(category string) string {
	if category == CategoryVisa {
		return RoomTypeVisa
	}
	return RoomTypeGeneral
}

// RoomID composes the room partition key from country code and category.
func RoomID(countryCode, category string) string {
	return fmt.Sprintf("%s-%s-%s", countryCode, category, RoomTypeFor(category))
}

// ValidCategory reports whether the category is one of the supported rooms.
func ValidCategory(category string) bool {
	switch category {
	case CategoryStudy, CategoryTravel, CategoryVisa:
		return true
	}
	return false
}
