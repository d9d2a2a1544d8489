package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/sigscope/internal/flirt"
)

type signatureRecord struct {
	Summary SignatureSummary
	Result  *flirt.Result
}

// SignatureStore holds decoded signatures in memory, keyed by generated id.
type SignatureStore struct {
	mu   sync.Mutex
	sigs map[string]*signatureRecord
}

func NewSignatureStore() *SignatureStore {
	return &SignatureStore{sigs: make(map[string]*signatureRecord)}
}

func (s *SignatureStore) Create(res *flirt.Result, now time.Time) SignatureSummary {
	h := res.Header
	summary := SignatureSummary{
		ID:            uuid.NewString(),
		Library:       res.LibraryName,
		Version:       h.Version,
		Arch:          h.Arch,
		ArchName:      flirt.ArchName(h.Arch),
		FileTypes:     h.FileTypes,
		FileTypesName: flirt.FileTypesName(h.FileTypes),
		OSTypes:       h.OSTypes,
		OSTypesName:   flirt.OSTypesName(h.OSTypes),
		AppTypes:      h.AppTypes,
		AppTypesName:  flirt.AppTypesName(h.AppTypes),
		Features:      h.Features,
		FeaturesName:  flirt.FeaturesName(h.Features),
		ModuleCount:   len(res.Modules),
		FunctionCount: len(res.AllFunctions()),
		CreatedAt:     now.Unix(),
	}

	s.mu.Lock()
	s.sigs[summary.ID] = &signatureRecord{Summary: summary, Result: res}
	s.mu.Unlock()
	return summary
}

func (s *SignatureStore) Get(id string) (*signatureRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sigs[id]
	return rec, ok
}

// List returns all summaries ordered by creation time, then id.
func (s *SignatureStore) List() []SignatureSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SignatureSummary, 0, len(s.sigs))
	for _, rec := range s.sigs {
		out = append(out, rec.Summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *SignatureStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sigs[id]; !ok {
		return false
	}
	delete(s.sigs, id)
	return true
}
