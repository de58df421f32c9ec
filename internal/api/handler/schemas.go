package handler

import "time"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Code   string `json:"code,omitempty"`
	Fields []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fields,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Name      string `json:"name"       validate:"max=100"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Password  string `json:"password"   validate:"max=72"`
	AdminCode string `json:"admin_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

// --- Events ---

// eventRequest is shared by create and update. Required fields are
// checked by the service so every missing one is reported together.
type eventRequest struct {
	Title       string   `json:"title"       validate:"max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Date        string   `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	Time        string   `json:"time"        validate:"omitempty,datetime=15:04"`
	Location    string   `json:"location"    validate:"max=300"`
	Images      []string `json:"images"      validate:"max=20"`
	SheetLink   string   `json:"sheet_link"  validate:"omitempty,url"`
}

type eventResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`
	Time            string    `json:"time,omitempty"`
	Location        string    `json:"location"`
	Images          []string  `json:"images"`
	SheetLink       string    `json:"sheet_link,omitempty"`
	CreatorID       string    `json:"creator_id"`
	CreatorName     string    `json:"creator_name,omitempty"`
	RegistrantCount *int64    `json:"registrant_count,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type eventListResponse struct {
	Events []eventResponse `json:"events"`
	Count  int             `json:"count"`
}

// --- Registrations ---

type registrationStatusResponse struct {
	EventID         string `json:"event_id"`
	Registered      bool   `json:"registered"`
	RegistrantCount *int64 `json:"registrant_count,omitempty"`
}

type registrantResponse struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type registrantListResponse struct {
	EventID     string               `json:"event_id"`
	Registrants []registrantResponse `json:"registrants"`
	Count       int                  `json:"count"`
}
