package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/retrieve"
	"github.com/ppiankov/crosscheck/internal/verify"
)

// VerifyJob retrieves a record's cited sources and verifies the record
// against them.
type VerifyJob struct {
	Record     *model.IncidentRecord
	Client     *retrieve.Client
	Archive    *retrieve.Archive
	Engine     *verify.Engine
	Checkpoint *Checkpoint // nil disables checkpointing
	ForceFetch bool
}

// VerifyOutcome is the result of one VerifyJob.
type VerifyOutcome struct {
	Result model.VerificationResult
	Err    error
}

// GetError returns a job-level error. Per-citation and per-record problems
// are carried inside Result, never here; a batch only sees errors for
// conditions that genuinely prevented producing a result.
func (o *VerifyOutcome) GetError() error {
	return o.Err
}

// Execute retrieves source texts (archived first, fetched otherwise) and
// scores the record. A record whose citations are all unreachable gets the
// terminal url_inaccessible verdict for this run.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	rec := j.Record

	texts, failures := j.Client.RecordSources(ctx, rec, j.Archive, j.ForceFetch)

	var result model.VerificationResult
	if len(texts) == 0 && len(rec.Sources) > 0 {
		result = model.VerificationResult{
			EntryID:       rec.ID,
			Verdict:       model.VerdictInaccessible,
			FetchFailures: failures,
			Reasoning:     "all retrieval strategies failed for every citation",
			VerifiedAt:    time.Now().UTC(),
		}
	} else {
		result = j.Engine.Verify(ctx, rec, texts)
		result.FetchFailures = failures
	}

	// Flush the checkpoint per completed item; an interrupt between items
	// loses no finished work.
	if j.Checkpoint != nil {
		if err := j.Checkpoint.Mark(rec.ID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: checkpoint write failed: %v\n", err)
		}
	}
	return &VerifyOutcome{Result: result}
}

// Batch runs verification over records with checkpointed resume.
type Batch struct {
	Client     *retrieve.Client
	Archive    *retrieve.Archive
	Engine     *verify.Engine
	Checkpoint *Checkpoint // nil disables checkpointing
	Workers    int
	ForceFetch bool
	Verbose    bool
}

// Run verifies every record not already checkpointed and returns results in
// record-ID-independent completion order. The returned slice holds exactly
// one entry per attempted record.
func (b *Batch) Run(ctx context.Context, records []*model.IncidentRecord) []model.VerificationResult {
	pool := NewPool(b.Workers)
	pool.Start()

	submitted := 0
	for _, rec := range records {
		if b.Checkpoint != nil && b.Checkpoint.Processed(rec.ID) {
			if b.Verbose {
				fmt.Fprintf(os.Stderr, "- %s: already processed, skipping\n", rec.ID)
			}
			continue
		}
		pool.Submit(&VerifyJob{
			Record:     rec,
			Client:     b.Client,
			Archive:    b.Archive,
			Engine:     b.Engine,
			Checkpoint: b.Checkpoint,
			ForceFetch: b.ForceFetch,
		})
		submitted++
	}

	raw := pool.Wait()

	results := make([]model.VerificationResult, 0, submitted)
	for _, r := range raw {
		outcome := r.(*VerifyOutcome)
		if outcome.Err != nil {
			continue
		}
		results = append(results, outcome.Result)
	}
	return results
}
