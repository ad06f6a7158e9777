package domain

import "time"

// Account is a provider-side sending identity mapped to an internal workspace.
type Account struct {
	ID                 string    `db:"id" json:"id"`
	WorkspaceID        string    `db:"workspace_id" json:"workspaceId"`
	PhoneNumberID      string    `db:"phone_number_id" json:"phoneNumberId"`
	WabaID             *string   `db:"waba_id" json:"wabaId,omitempty"`
	DisplayPhoneNumber *string   `db:"display_phone_number" json:"displayPhoneNumber,omitempty"`
	GraphAPIVersion    *string   `db:"graph_api_version" json:"graphApiVersion,omitempty"`
	IsActive           bool      `db:"is_active" json:"isActive"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}
