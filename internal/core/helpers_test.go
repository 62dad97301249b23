package core

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/nalarbp/patomove/internal/blob"
	"github.com/nalarbp/patomove/internal/infra/persistence/memory"
	"github.com/nalarbp/patomove/pkg/domain"
)

func jsonDecode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store := memory.NewStore(DefaultRulesEngine())
	opts = append([]Option{WithBlobStore(blob.NewMemory())}, opts...)
	return NewService(store, opts...)
}

func mustCreateIsolate(t *testing.T, svc *Service, isolate domain.Isolate) domain.Isolate {
	t.Helper()
	created, _, err := svc.CreateIsolate(context.Background(), isolate)
	if err != nil {
		t.Fatalf("create isolate: %v", err)
	}
	return created
}

func mustCreateGenome(t *testing.T, svc *Service, genome domain.GenomicData) domain.GenomicData {
	t.Helper()
	created, _, err := svc.CreateGenome(context.Background(), genome)
	if err != nil {
		t.Fatalf("create genome: %v", err)
	}
	return created
}

func validGenome(id, originalFilename string, uploaded time.Time) domain.GenomicData {
	return domain.GenomicData{
		Base:             domain.Base{ID: id},
		Filename:         id + "_" + originalFilename,
		OriginalFilename: originalFilename,
		ValidationStatus: domain.ValidationValid,
		ProcessingStatus: domain.GenomeValidated,
		UploadDate:       uploaded,
	}
}
