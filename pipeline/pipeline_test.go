package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"suumo-scraper/config"
	"suumo-scraper/models"
	"suumo-scraper/storage"
	"suumo-scraper/utils"
)

const resultPage = `<html><body>
<div class="cassetteitem">
  <div class="cassetteitem_content-title">グランド大井町</div>
  <ul class="cassetteitem_detail">
    <li class="cassetteitem_detail-col2"><div class="cassetteitem_detail-text">ＪＲ京浜東北線/大井町駅 歩5分</div></li>
    <li class="cassetteitem_detail-col3"><div>築8年</div><div>5階建</div></li>
  </ul>
  <table class="cassetteitem_other">
    <tbody><tr>
      <td><span class="cassetteitem_other-emphasis">8.5万円</span></td>
      <td><span class="cassetteitem_madori">1K</span></td>
      <td><span class="cassetteitem_menseki">20m2</span></td>
    </tr></tbody>
    <tbody><tr>
      <td><span class="cassetteitem_other-emphasis">14万円</span></td>
      <td><span class="cassetteitem_madori">1LDK</span></td>
      <td><span class="cassetteitem_menseki">30m2</span></td>
    </tr></tbody>
    <tbody><tr>
      <td><span class="cassetteitem_other-emphasis">情報なし</span></td>
      <td><span class="cassetteitem_madori">1K</span></td>
      <td><span class="cassetteitem_menseki">21.5m2</span></td>
    </tr></tbody>
  </table>
</div>
</body></html>`

const emptyPage = `<html><body></body></html>`

func newServer(t *testing.T, failStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failStatus != 0 {
			http.Error(w, "unavailable", failStatus)
			return
		}
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, resultPage)
			return
		}
		fmt.Fprint(w, emptyPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		BaseURL:        baseURL + "/?ar=030",
		UserAgent:      "Mozilla/5.0 test",
		FetchMode:      config.FetchHTTP,
		MaxRetries:     1,
		HTTPTimeoutSec: 5,
		SentinelPolicy: config.SentinelZero,
		CSVOutputPath:  filepath.Join(dir, "out.csv"),
		DBDriver:       "sqlite",
		SQLitePath:     filepath.Join(dir, "suumo.db"),
		Filter: models.FilterOptions{
			FloorPlans:     []models.FloorPlan{models.Plan1K},
			SizeMax:        models.Float(25),
			TargetStations: []string{"大井町", "品川"},
		},
	}
}

func newRunner(cfg *config.Config, out *bytes.Buffer) *Runner {
	return &Runner{Config: cfg, Logger: utils.Discard(), Out: out}
}

func TestRunEndToEnd(t *testing.T) {
	srv := newServer(t, 0)
	cfg := testConfig(t, srv.URL)
	var out bytes.Buffer

	sum, err := newRunner(cfg, &out).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, sum.Scrape.Err)
	require.Contains(t, sum.SearchURL, "mdg02=1")
	require.Contains(t, sum.SearchURL, "mt=25")

	require.Len(t, sum.Scrape.Listings, 3)
	require.Len(t, sum.Filtered, 2)
	require.Equal(t, 0.0, sum.Filtered[1].Rent)
	require.Equal(t, 2, sum.Report.ByStation["大井町"])
	require.Empty(t, sum.SinkErrs)
	require.Contains(t, out.String(), "Summary Statistics")

	fromCSV, err := storage.ReadCSV(cfg.CSVOutputPath)
	require.NoError(t, err)
	require.Equal(t, sum.Filtered, fromCSV)

	db, err := storage.NewSQLWriter(context.Background(), "sqlite", cfg.SQLitePath, utils.Discard())
	require.NoError(t, err)
	defer db.Close()
	stored, err := db.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestRunKeepsGoingAfterFetchError(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable)
	cfg := testConfig(t, srv.URL)
	var out bytes.Buffer

	sum, err := newRunner(cfg, &out).Run(context.Background())
	require.NoError(t, err)

	var fe *models.FetchError
	require.True(t, errors.As(sum.Scrape.Err, &fe))
	require.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	require.Empty(t, sum.Filtered)
	require.Equal(t, 0, sum.Report.Total)

	fromCSV, err := storage.ReadCSV(cfg.CSVOutputPath)
	require.NoError(t, err)
	require.Empty(t, fromCSV)
}

// interruptingFetcher serves page 1, then cancels the run while page 2 is
// being fetched.
type interruptingFetcher struct {
	cancel context.CancelFunc
}

func (f *interruptingFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if strings.HasSuffix(pageURL, "page=1") {
		return []byte(resultPage), nil
	}
	f.cancel()
	return nil, ctx.Err()
}

func TestRunPersistsListingsAfterInterrupt(t *testing.T) {
	cfg := testConfig(t, "https://suumo.example")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	runner := newRunner(cfg, &out)
	runner.Fetcher = &interruptingFetcher{cancel: cancel}

	sum, err := runner.Run(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, sum.Scrape.Err, context.Canceled)
	require.Len(t, sum.Filtered, 2)
	require.Empty(t, sum.SinkErrs)

	fromCSV, err := storage.ReadCSV(cfg.CSVOutputPath)
	require.NoError(t, err)
	require.Equal(t, sum.Filtered, fromCSV)

	db, err := storage.NewSQLWriter(context.Background(), "sqlite", cfg.SQLitePath, utils.Discard())
	require.NoError(t, err)
	defer db.Close()
	stored, err := db.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestRunSinksAreIndependent(t *testing.T) {
	srv := newServer(t, 0)
	cfg := testConfig(t, srv.URL)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.CSVOutputPath = filepath.Join(blocker, "out.csv")

	var out bytes.Buffer
	sum, err := newRunner(cfg, &out).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.SinkErrs, 1)

	var pe *models.PersistenceError
	require.True(t, errors.As(sum.SinkErrs[0], &pe))
	require.Equal(t, "csv", pe.Sink)

	db, err := storage.NewSQLWriter(context.Background(), "sqlite", cfg.SQLitePath, utils.Discard())
	require.NoError(t, err)
	defer db.Close()
	stored, err := db.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestRunEmptyBaseURLIsFatal(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.BaseURL = ""
	var out bytes.Buffer

	_, err := newRunner(cfg, &out).Run(context.Background())
	require.ErrorIs(t, err, models.ErrEmptyBaseURL)
	require.NoFileExists(t, cfg.CSVOutputPath)
}

func TestReportFromCSV(t *testing.T) {
	srv := newServer(t, 0)
	cfg := testConfig(t, srv.URL)
	cfg.DBDriver = ""
	var out bytes.Buffer

	_, err := newRunner(cfg, &out).Run(context.Background())
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, Report(cfg.CSVOutputPath, cfg, utils.Discard(), &out))
	require.Contains(t, out.String(), "Total number of properties matching criteria: 2")
}

func TestSentinelPolicy(t *testing.T) {
	require.Equal(t, "exclude", SentinelPolicy(config.SentinelExclude).String())
	require.Equal(t, "zero", SentinelPolicy("zero").String())
}
