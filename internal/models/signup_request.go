package models

import "encoding/json"

// SignupRequest represents the request body for an email signup
type SignupRequest struct {
	Email string `json:"email"`
}

// UnmarshalJSON reads only the exact "email" key. encoding/json would also
// match "Email" or "EMAIL" into the field. A non-string value is an error.
func (r *SignupRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = SignupRequest{}
	raw, ok := fields["email"]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, &r.Email)
}
