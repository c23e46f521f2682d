package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/newsinsight/newsserve/internal/storage"
)

// chunkWriter commits every size rows and starts a new transaction.
type chunkWriter struct {
	db    TxBeginner
	size  int
	tx    storage.Tx
	rows  int
	stats *ImportStats
}

func (w *chunkWriter) write(ctx context.Context, fn func(tx storage.Tx) error) error {
	if w.tx == nil {
		tx, err := w.db.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("begin chunk %d: %w", w.stats.Chunks+1, err)
		}
		w.tx = tx
	}
	if err := fn(w.tx); err != nil {
		_ = w.tx.Rollback()
		w.tx = nil
		return err
	}
	w.rows++
	if w.rows >= w.size {
		return w.flush()
	}
	return nil
}

func (w *chunkWriter) flush() error {
	if w.tx == nil {
		return nil
	}
	if err := w.tx.Commit(); err != nil {
		w.tx = nil
		return fmt.Errorf("commit chunk %d: %w", w.stats.Chunks+1, err)
	}
	w.stats.Chunks++
	log.Debugf("Committed chunk %d (%d rows)", w.stats.Chunks, w.rows)
	w.tx = nil
	w.rows = 0
	return nil
}

func (w *chunkWriter) abort() {
	if w.tx != nil {
		_ = w.tx.Rollback()
		w.tx = nil
	}
}

// Import writes ds into db, chunkSize rows per transaction (DefaultChunkSize
// when <= 0). News rows go first so browse records can reference them. On
// error, chunks already committed stay in place and the stats say how far
// the import got.
func Import(ctx context.Context, db TxBeginner, ds *Dataset, chunkSize int) (ImportStats, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	start := time.Now()
	stats := ImportStats{}
	w := &chunkWriter{db: db, size: chunkSize, stats: &stats}
	defer w.abort()

	for i := range ds.News {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n := ds.News[i]
		if err := w.write(ctx, func(tx storage.Tx) error { return tx.InsertNews(ctx, &n) }); err != nil {
			return stats, fmt.Errorf("news %d: %w", n.ID, err)
		}
		stats.News++
	}
	for i := range ds.BrowseRecords {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r := ds.BrowseRecords[i]
		if err := w.write(ctx, func(tx storage.Tx) error { return tx.InsertBrowseRecord(ctx, &r) }); err != nil {
			return stats, fmt.Errorf("browse record user %d news %d: %w", r.UserID, r.NewsID, err)
		}
		stats.BrowseRecords++
	}
	for i := range ds.DailyCategories {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		dc := ds.DailyCategories[i]
		if err := w.write(ctx, func(tx storage.Tx) error { return tx.UpsertDailyCategory(ctx, &dc) }); err != nil {
			return stats, fmt.Errorf("daily category %d/%s: %w", dc.DayStamp, dc.Category, err)
		}
		stats.DailyCategories++
	}
	for i := range ds.UserInterests {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ui := ds.UserInterests[i]
		if err := w.write(ctx, func(tx storage.Tx) error { return tx.UpsertUserInterest(ctx, &ui) }); err != nil {
			return stats, fmt.Errorf("user interest %d/%s: %w", ui.UserID, ui.Category, err)
		}
		stats.UserInterests++
	}
	if err := w.flush(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	log.Infof("Imported %d news, %d browse records, %d daily categories, %d user interests in %d chunks (%v)",
		stats.News, stats.BrowseRecords, stats.DailyCategories, stats.UserInterests, stats.Chunks, stats.Duration)
	return stats, nil
}
