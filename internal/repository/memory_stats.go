package repository

import (
	"context"
	"sort"

	"bloodlink-data/internal/domain"
)

func sortedCounts(m map[string]int) []CountRow {
	out := make([]CountRow, 0, len(m))
	for label, count := range m {
		out = append(out, CountRow{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *MemoryStore) CountUsersByRole(ctx context.Context) ([]CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, u := range s.users {
		if u.IsActive {
			counts[string(u.Role)]++
		}
	}
	return sortedCounts(counts), nil
}

func (s *MemoryStore) CountDonorsByBloodType(ctx context.Context) ([]CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, d := range s.donors {
		if d.IsAvailable {
			counts[string(d.BloodType)]++
		}
	}
	return sortedCounts(counts), nil
}

func (s *MemoryStore) CountRequestsByStatus(ctx context.Context) ([]CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, req := range s.requests {
		counts[string(req.Status)]++
	}
	return sortedCounts(counts), nil
}

func (s *MemoryStore) CountOpenRequestsByUrgency(ctx context.Context) ([]CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, req := range s.requests {
		if req.Status == domain.StatusOpen {
			counts[string(req.Urgency)]++
		}
	}
	return sortedCounts(counts), nil
}

func (s *MemoryStore) TopDonorCities(ctx context.Context, limit int) ([]CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, d := range s.donors {
		if d.IsAvailable {
			counts[d.City]++
		}
	}
	out := make([]CountRow, 0, len(counts))
	for city, count := range counts {
		out = append(out, CountRow{Label: city, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Totals(ctx context.Context) (*TotalCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var t TotalCounts
	for _, u := range s.users {
		if u.IsActive {
			t.TotalUsers++
		}
	}
	for _, d := range s.donors {
		if d.IsAvailable {
			t.TotalAvailableDonors++
		}
	}
	for _, req := range s.requests {
		switch req.Status {
		case domain.StatusOpen:
			t.OpenRequests++
		case domain.StatusFulfilled:
			t.FulfilledRequests++
		}
	}
	return &t, nil
}

func (s *MemoryStore) DonorReport(ctx context.Context, dr DateRange) ([]*domain.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.DonorProfile
	for _, d := range s.donors {
		if dr.Contains(d.CreatedAt) {
			out = append(out, s.profileLocked(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].DonorID, out[i].CreatedAt, out[j].DonorID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) RequestReport(ctx context.Context, dr DateRange) ([]*domain.RequestDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.RequestDetail
	for _, req := range s.requests {
		if dr.Contains(req.CreatedAt) {
			out = append(out, s.detailLocked(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].RequestID, out[i].CreatedAt, out[j].RequestID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) BloodGroupAnalysis(ctx context.Context) ([]BloodGroupAnalysisRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byGroup := map[domain.BloodType]*BloodGroupAnalysisRow{}
	for _, d := range s.donors {
		row := byGroup[d.BloodType]
		if row == nil {
			row = &BloodGroupAnalysisRow{BloodType: d.BloodType}
			byGroup[d.BloodType] = row
		}
		row.TotalDonors++
		if d.IsAvailable {
			row.AvailableDonors++
		}
	}
	for _, req := range s.requests {
		row := byGroup[req.BloodType]
		if row == nil {
			// the SQL version only reports groups that have donors
			continue
		}
		row.TotalRequests++
		if req.Status == domain.StatusOpen {
			row.OpenRequests++
		}
	}
	out := make([]BloodGroupAnalysisRow, 0, len(byGroup))
	for _, row := range byGroup {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BloodType < out[j].BloodType })
	return out, nil
}

func (s *MemoryStore) CityAnalysis(ctx context.Context) ([]CityAnalysisRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byCity := map[string]*CityAnalysisRow{}
	for _, d := range s.donors {
		row := byCity[d.City]
		if row == nil {
			row = &CityAnalysisRow{City: d.City}
			byCity[d.City] = row
		}
		if d.State.Valid && row.State == "" {
			row.State = d.State.String
		}
		row.TotalDonors++
		if d.IsAvailable {
			row.AvailableDonors++
		}
	}
	for _, req := range s.requests {
		if row, ok := byCity[req.City]; ok {
			row.TotalRequests++
		}
	}
	out := make([]CityAnalysisRow, 0, len(byCity))
	for _, row := range byCity {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDonors != out[j].TotalDonors {
			return out[i].TotalDonors > out[j].TotalDonors
		}
		return out[i].City < out[j].City
	})
	return out, nil
}
