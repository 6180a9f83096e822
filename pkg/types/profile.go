package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/amaracare/careops-backend/pkg/enums"
)

// VolunteerProfile holds the volunteer-specific attribute bag.
type VolunteerProfile struct {
	Skills       []string `json:"skills,omitempty"`
	Availability string   `json:"availability,omitempty"`
}

// BeneficiaryProfile holds the beneficiary-specific attribute bag.
type BeneficiaryProfile struct {
	FamilySize int      `json:"family_size,omitempty"`
	Needs      []string `json:"needs,omitempty"`
}

// StaffProfile holds the staff-specific attribute bag.
type StaffProfile struct {
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

// Profile is the role-tagged variant of a user's additional info. Exactly one
// branch is set for a recognized role; all branches are nil for admins (who
// carry no extra attributes) and for unrecognized roles.
type Profile struct {
	Volunteer   *VolunteerProfile   `json:"volunteer,omitempty"`
	Beneficiary *BeneficiaryProfile `json:"beneficiary,omitempty"`
	Staff       *StaffProfile       `json:"staff,omitempty"`
}

// DecodeProfile validates an open attribute map against the shape expected
// for the given role (schema on read). A nil map decodes as empty.
func DecodeProfile(role enums.Role, raw map[string]any) (Profile, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return Profile{}, fmt.Errorf("encoding additional info: %w", err)
	}

	switch role {
	case enums.RoleVolunteer:
		var p VolunteerProfile
		if err := strictDecode(encoded, &p); err != nil {
			return Profile{}, err
		}
		return Profile{Volunteer: &p}, nil
	case enums.RoleBeneficiary:
		var p BeneficiaryProfile
		if err := strictDecode(encoded, &p); err != nil {
			return Profile{}, err
		}
		if p.FamilySize < 0 {
			return Profile{}, fmt.Errorf("family_size must not be negative")
		}
		return Profile{Beneficiary: &p}, nil
	case enums.RoleStaff:
		var p StaffProfile
		if err := strictDecode(encoded, &p); err != nil {
			return Profile{}, err
		}
		return Profile{Staff: &p}, nil
	case enums.RoleAdmin:
		if len(raw) > 0 {
			return Profile{}, fmt.Errorf("admin accounts carry no additional info")
		}
		return Profile{}, nil
	}
	if len(raw) > 0 {
		return Profile{}, fmt.Errorf("unrecognized role carries no additional info")
	}
	return Profile{}, nil
}

// Encode flattens the set branch back into the open map stored in the db.
func (p Profile) Encode() map[string]any {
	var source any
	switch {
	case p.Volunteer != nil:
		source = p.Volunteer
	case p.Beneficiary != nil:
		source = p.Beneficiary
	case p.Staff != nil:
		source = p.Staff
	default:
		return map[string]any{}
	}

	encoded, err := json.Marshal(source)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// strictDecode rejects keys outside the destination shape, so a bag written
// for one role cannot pass for another.
func strictDecode(raw []byte, dest any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("additional info does not match role shape: %w", err)
	}
	return nil
}
