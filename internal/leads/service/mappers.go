package service

import (
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/leads/transport"
)

// ToLeadResponse converts a repository lead and its breakdown into a response DTO.
func ToLeadResponse(lead repository.Lead, breakdown scoring.Breakdown) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:           lead.ID,
		FirstName:    lead.FirstName,
		LastName:     lead.LastName,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Message:      lead.Message,
		Notes:        lead.Notes,
		Source:       string(lead.Source),
		SourceLabel:  lead.Source.Label(),
		Status:       string(lead.Status),
		StatusLabel:  lead.Status.Label(),
		NextFollowup: lead.NextFollowup,
		Score:        ToScoreResponse(breakdown),
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
	if lead.Vehicle != nil {
		resp.Vehicle = &transport.VehicleResponse{
			ID:          lead.Vehicle.ID,
			Make:        lead.Vehicle.Make,
			Model:       lead.Vehicle.Model,
			AskingPrice: lead.Vehicle.AskingPrice,
		}
	}
	return resp
}

// ToScoreResponse attaches the display band to a breakdown.
func ToScoreResponse(breakdown scoring.Breakdown) transport.ScoreResponse {
	return transport.ScoreResponse{
		Breakdown: breakdown,
		Label:     scoring.Classify(breakdown.Total),
		Version:   scoring.ScoreVersion,
	}
}

// ToActivityResponse converts a repository activity into a response DTO.
func ToActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:        a.ID,
		LeadID:    a.LeadID,
		Type:      string(a.Type),
		Body:      a.Body,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

// ToActivityResponses converts a slice, never returning nil.
func ToActivityResponses(items []repository.Activity) []transport.ActivityResponse {
	out := make([]transport.ActivityResponse, len(items))
	for i, item := range items {
		out[i] = ToActivityResponse(item)
	}
	return out
}

func toScoringLead(lead repository.Lead) scoring.Lead {
	return scoring.Lead{
		CreatedAt:   lead.CreatedAt,
		Source:      lead.Source,
		AskingPrice: lead.AskingPrice(),
	}
}

func toScoringActivities(items []repository.Activity) []scoring.Activity {
	out := make([]scoring.Activity, len(items))
	for i, item := range items {
		out[i] = scoring.Activity{CreatedAt: item.CreatedAt}
	}
	return out
}
