package memory

import (
	"time"

	"ai-reportgen-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// RunRepository tracks live workflow runs. Entries expire on their own so
// abandoned runs do not accumulate.
type RunRepository struct {
	cache *cache.Cache
}

func NewRunRepository() *RunRepository {
	// Runs linger for 2 hours after the last update; expired entries are
	// purged every 15 minutes.
	c := cache.New(2*time.Hour, 15*time.Minute)
	return &RunRepository{
		cache: c,
	}
}

func (r *RunRepository) Save(run *entity.ReportRun) {
	run.UpdatedAt = time.Now()
	r.cache.Set(run.Id, run, cache.DefaultExpiration)
}

func (r *RunRepository) Get(runID string) (*entity.ReportRun, bool) {
	if x, found := r.cache.Get(runID); found {
		return x.(*entity.ReportRun), true
	}
	return nil, false
}

func (r *RunRepository) Delete(runID string) {
	r.cache.Delete(runID)
}

func (r *RunRepository) All() []*entity.ReportRun {
	items := r.cache.Items()
	runs := make([]*entity.ReportRun, 0, len(items))
	for _, item := range items {
		runs = append(runs, item.Object.(*entity.ReportRun))
	}
	return runs
}
