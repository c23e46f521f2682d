// Package dataset reads news browsing datasets from disk and loads them into
// the store in chunked transactions.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

// DefaultChunkSize is the number of rows written per transaction.
const DefaultChunkSize = 5000

// Dataset is the on-disk document.
type Dataset struct {
	News            []model.News          `json:"news" msgpack:"news"`
	BrowseRecords   []model.BrowseRecord  `json:"browseRecords" msgpack:"browseRecords"`
	DailyCategories []model.DailyCategory `json:"dailyCategories" msgpack:"dailyCategories"`
	UserInterests   []model.UserInterest  `json:"userInterests" msgpack:"userInterests"`
}

// ImportStats counts the rows written by Import.
type ImportStats struct {
	News            int
	BrowseRecords   int
	DailyCategories int
	UserInterests   int
	Chunks          int
	Duration        time.Duration
}

// TxBeginner is the part of storage.Storage the importer needs.
type TxBeginner interface {
	BeginTx(ctx context.Context) (storage.Tx, error)
}

// Load reads a dataset, choosing the decoder from the file extension.
func Load(path string) (*Dataset, error) {
	path = utils.ExpandHome(path)
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var ds Dataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&ds)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", format, path, err)
	}

	log.Debugf("Loaded %s: %d news, %d browse records, %d daily categories, %d user interests",
		path, len(ds.News), len(ds.BrowseRecords), len(ds.DailyCategories), len(ds.UserInterests))
	return &ds, nil
}

// Save writes ds in the format implied by the extension of path.
func Save(ds *Dataset, path string) error {
	format, err := formatFromExt(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(ds, "", "  ")
	case FormatMsgpack:
		data, err = msgpack.Marshal(ds)
	}
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func formatFromExt(path string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range []FileFormat{FormatJSON, FormatMsgpack} {
		if slices.Contains(supportedFormats[format].Extensions, ext) {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", path)
}

// Aggregate fills DailyCategories and UserInterests from the browse records
// when the dataset does not carry them. Records pointing at unknown news are
// skipped.
func Aggregate(ds *Dataset) {
	if len(ds.BrowseRecords) == 0 {
		return
	}
	byID := make(map[int64]*model.News, len(ds.News))
	for i := range ds.News {
		byID[ds.News[i].ID] = &ds.News[i]
	}

	if len(ds.DailyCategories) == 0 {
		type key struct {
			day      int
			category string
		}
		daily := make(map[key]*model.DailyCategory)
		for _, r := range ds.BrowseRecords {
			n, ok := byID[r.NewsID]
			if !ok || n.Category == "" {
				continue
			}
			k := key{utils.ToDayStamp(utils.FromUnix(r.StartTs)), n.Category}
			dc, ok := daily[k]
			if !ok {
				dc = &model.DailyCategory{DayStamp: k.day, Category: k.category}
				daily[k] = dc
			}
			dc.BrowseCount++
			dc.BrowseDuration += r.Duration
		}
		for _, dc := range daily {
			ds.DailyCategories = append(ds.DailyCategories, *dc)
		}
		sort.Slice(ds.DailyCategories, func(i, j int) bool {
			a, b := ds.DailyCategories[i], ds.DailyCategories[j]
			if a.DayStamp != b.DayStamp {
				return a.DayStamp < b.DayStamp
			}
			return a.Category < b.Category
		})
	}

	if len(ds.UserInterests) == 0 {
		type key struct {
			user     int64
			category string
		}
		interests := make(map[key]*model.UserInterest)
		for _, r := range ds.BrowseRecords {
			n, ok := byID[r.NewsID]
			if !ok || n.Category == "" {
				continue
			}
			k := key{r.UserID, n.Category}
			ui, ok := interests[k]
			if !ok {
				ui = &model.UserInterest{UserID: r.UserID, Category: n.Category}
				interests[k] = ui
			}
			ui.ClickCount++
			ui.DwellTime += r.Duration
			if r.StartTs >= ui.UpdateTime {
				ui.UpdateTime = r.StartTs
				ui.Topic = n.Topic
			}
		}
		for _, ui := range interests {
			ds.UserInterests = append(ds.UserInterests, *ui)
		}
		sort.Slice(ds.UserInterests, func(i, j int) bool {
			a, b := ds.UserInterests[i], ds.UserInterests[j]
			if a.UserID != b.UserID {
				return a.UserID < b.UserID
			}
			return a.Category < b.Category
		})
	}
}
