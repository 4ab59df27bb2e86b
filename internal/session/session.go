// Package session reads and writes the JSON artifact handed between pipeline stages.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Agent is recorded in every artifact header.
const Agent = "EstefaniPUBLI"

// Session is the artifact root.
type Session struct {
	Info        Info                        `json:"session_info"`
	Articles    []pipeline.ProcessedArticle `json:"noticias_procesadas"`
	Summary     Summary                     `json:"resumen_session"`
	Analysis    *Analysis                   `json:"analisis_info,omitempty"`
	Publication *Publication                `json:"publicacion_info,omitempty"`
}

// Info identifies the run that produced the artifact.
type Info struct {
	SessionID  string     `json:"session_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Agent      string     `json:"agent,omitempty"`
	Mode       string     `json:"mode"`
	Parameters Parameters `json:"parameters"`
}

// Parameters are the discover inputs.
type Parameters struct {
	MaxItems        int    `json:"max_noticias"`
	PortalFilter    string `json:"filtro_portales"`
	PortalsAnalyzed int    `json:"portales_analizados"`
	WithImages      bool   `json:"con_imagenes,omitempty"`
}

// Summary describes the discover batch.
type Summary struct {
	Total           int     `json:"total"`
	PortalsAnalyzed int     `json:"portales_analizados"`
	ProcessingTime  string  `json:"tiempo_procesamiento"`
	AverageQuality  float64 `json:"calidad_promedio"`
	ReadyToPublish  bool    `json:"listo_para_publicacion"`
}

// Analysis is written by the enrich stage.
type Analysis struct {
	Strategy string    `json:"tipo_analisis"`
	At       time.Time `json:"fecha_analisis"`
	Enriched int       `json:"total_analizadas"`
	Total    int       `json:"total_noticias"`
	Failed   int       `json:"total_fallidas,omitempty"`
}

// Publication is written by the publish stage.
type Publication struct {
	At      time.Time                      `json:"fecha_publicacion"`
	Mode    string                         `json:"modo"`
	Results []pipeline.PublishResult       `json:"results"`
	Counts  map[pipeline.PublishStatus]int `json:"counts"`
}

// NewPublication folds results into counts.
func NewPublication(at time.Time, mode string, results []pipeline.PublishResult) *Publication {
	counts := make(map[pipeline.PublishStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return &Publication{At: at, Mode: mode, Results: results, Counts: counts}
}

// ShortIDer returns a short random hex token.
type ShortIDer interface {
	Short() (string, error)
}

// NewID returns session_<YYYYMMDD_HHMMSS>_<8 hex>.
func NewID(now time.Time, ids ShortIDer) (string, error) {
	suffix, err := ids.Short()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return "session_" + now.UTC().Format("20060102_150405") + "_" + suffix, nil
}

// Load reads an artifact. Missing or corrupt files are input errors.
func Load(path string) (*Session, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator.
	if err != nil {
		return nil, &pipeline.InputError{What: "read session " + path, Err: err}
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &pipeline.InputError{What: "decode session " + path, Err: err}
	}
	if s.Info.SessionID == "" {
		return nil, &pipeline.InputError{What: "decode session " + path, Err: errors.New("missing session_info.session_id")}
	}
	return &s, nil
}

// Save writes s to path through a temp file and rename, so readers never see
// a partial artifact.
func Save(path string, s *Session) error {
	if s == nil {
		return errors.New("save session: nil session")
	}
	out := *s
	if out.Articles == nil {
		out.Articles = []pipeline.ProcessedArticle{}
	}
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		return errors.Join(fmt.Errorf("write session: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync session: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close session: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(fmt.Errorf("rename session: %w", err), os.Remove(tmp.Name()))
	}
	return nil
}
