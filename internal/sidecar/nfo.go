package sidecar

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Metadata holds the descriptive fields read from or written to a
// Kodi-style <movie> NFO sidecar file.
type Metadata struct {
	Title       string
	ReleaseDate string
	Description string
	Channel     string
	Tags        string // comma-delimited
	ExternalID  string
}

// xmlMovie is the <movie> root element. Field names follow the
// Kodi/Jellyfin NFO convention so files round-trip with other tools.
type xmlMovie struct {
	XMLName   xml.Name      `xml:"movie"`
	Title     string        `xml:"title"`
	Premiered string        `xml:"premiered,omitempty"`
	Plot      string        `xml:"plot,omitempty"`
	Studio    string        `xml:"studio,omitempty"`
	Tags      []string      `xml:"tag,omitempty"`
	UniqueIDs []xmlUniqueID `xml:"uniqueid,omitempty"`

	// Legacy single-ID field read from files written by other scrapers.
	ID string `xml:"id,omitempty"`
}

type xmlUniqueID struct {
	Type    string `xml:"type,attr,omitempty"`
	Default bool   `xml:"default,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Read parses an NFO sidecar file. Malformed content is an error; callers
// treat it as absent metadata and log it rather than failing the scan.
func Read(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m xmlMovie
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("malformed sidecar %s: %w", path, err)
	}

	meta := &Metadata{
		Title:       strings.TrimSpace(m.Title),
		ReleaseDate: strings.TrimSpace(m.Premiered),
		Description: strings.TrimSpace(m.Plot),
		Channel:     strings.TrimSpace(m.Studio),
		Tags:        strings.Join(trimAll(m.Tags), ","),
		ExternalID:  strings.TrimSpace(m.ID),
	}
	for _, uid := range m.UniqueIDs {
		if uid.Value == "" {
			continue
		}
		if uid.Default || meta.ExternalID == "" {
			meta.ExternalID = strings.TrimSpace(uid.Value)
		}
	}
	return meta, nil
}

// Load looks for the sidecar next to videoPath. The second return value
// reports whether a sidecar file exists at all.
func Load(sidecarPath string) (*Metadata, bool, error) {
	if _, err := os.Stat(sidecarPath); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	meta, err := Read(sidecarPath)
	if err != nil {
		return nil, true, err
	}
	return meta, true, nil
}

// Write serializes metadata to an NFO file, replacing any existing one.
// Only called for self-authored sidecars; external files are never
// rewritten.
func Write(path string, meta Metadata) error {
	m := xmlMovie{
		Title:     meta.Title,
		Premiered: meta.ReleaseDate,
		Plot:      meta.Description,
		Studio:    meta.Channel,
		Tags:      trimAll(strings.Split(meta.Tags, ",")),
	}
	if meta.ExternalID != "" {
		m.UniqueIDs = []xmlUniqueID{{Type: "videolib", Default: true, Value: meta.ExternalID}}
	}

	data, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}

	out := append([]byte(xml.Header), data...)
	out = append(out, '\n')
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", path, err)
	}
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
