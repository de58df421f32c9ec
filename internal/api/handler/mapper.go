package handler

import (
	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		AdminCode: req.AdminCode,
	}
}

func toEventDraft(req eventRequest) ports.EventDraft {
	return ports.EventDraft{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Images:      req.Images,
		SheetLink:   req.SheetLink,
	}
}

// --- Domain → Response ---

func toUserResponse(p *domain.Principal) userResponse {
	return userResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
}

func toEventResponse(e *domain.Event) eventResponse {
	images := e.Images
	if images == nil {
		images = []string{}
	}
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.Format(domain.DateLayout),
		Time:        e.Time,
		Location:    e.Location,
		Images:      images,
		SheetLink:   e.SheetLink,
		CreatorID:   e.CreatorID,
		CreatorName: e.CreatorName,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventSummaryResponse(s domain.EventSummary) eventResponse {
	r := toEventResponse(&s.Event)
	count := s.RegistrantCount
	r.RegistrantCount = &count
	return r
}

func toEventList(events []*domain.Event) eventListResponse {
	out := make([]eventResponse, len(events))
	for i, e := range events {
		out[i] = toEventResponse(e)
	}
	return eventListResponse{Events: out, Count: len(out)}
}

func toSummaryList(summaries []domain.EventSummary) eventListResponse {
	out := make([]eventResponse, len(summaries))
	for i, s := range summaries {
		out[i] = toEventSummaryResponse(s)
	}
	return eventListResponse{Events: out, Count: len(out)}
}

func toRegistrantList(eventID string, registrants []domain.Registrant) registrantListResponse {
	out := make([]registrantResponse, len(registrants))
	for i, r := range registrants {
		out[i] = registrantResponse{
			UserID:       r.UserID,
			Name:         r.Name,
			Email:        r.Email,
			RegisteredAt: r.RegisteredAt,
		}
	}
	return registrantListResponse{EventID: eventID, Registrants: out, Count: len(out)}
}
