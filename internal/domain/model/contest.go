// Package model contains the payloads exchanged with the scoreboard backend.
package model

import (
	"sort"
	"strings"

	"github.com/okian/scoreview/internal/domain/timeline"
)

// Contest is one entry of the contest list.
type Contest struct {
	BoardLink string        `json:"board_link"`
	Config    ContestConfig `json:"config"`
}

// ContestConfig is a contest configuration snapshot.
type ContestConfig struct {
	ContestID         string             `json:"contest_id,omitempty"`
	ContestName       string             `json:"contest_name,omitempty"`
	StartTime         int64              `json:"start_time,omitempty"`
	EndTime           int64              `json:"end_time,omitempty"`
	FrozenTime        int64              `json:"frozen_time,omitempty"`
	Penalty           int64              `json:"penalty,omitempty"`
	ProblemQuantity   int                `json:"problem_quantity,omitempty"`
	ProblemID         []string           `json:"problem_id,omitempty"`
	Group             map[string]string  `json:"group,omitempty"`
	Organization      string             `json:"organization,omitempty"`
	StatusTimeDisplay *StatusTimeDisplay `json:"status_time_display,omitempty"`
	Medal             *Medal             `json:"medal,omitempty"`
	BalloonColor      []BalloonColor     `json:"balloon_color,omitempty"`
	Logo              *Logo              `json:"logo,omitempty"`
	Link              *Link              `json:"link,omitempty"`
	Banner            *Banner            `json:"banner,omitempty"`
	Options           *Options           `json:"options,omitempty"`
	Frozen            bool               `json:"frozen,omitempty"`
	Unfrozen          bool               `json:"unfrozen,omitempty"`
}

// StatusTimeDisplay says which verdicts show their submission time.
type StatusTimeDisplay struct {
	Correct   bool `json:"correct,omitempty"`
	Incorrect bool `json:"incorrect,omitempty"`
	Pending   bool `json:"pending,omitempty"`
}

// Medal describes the medal policy.
type Medal struct {
	Type     string         `json:"type,omitempty"`
	Official *OfficialMedal `json:"official,omitempty"`
}

// OfficialMedal holds the medal counts for official teams.
type OfficialMedal struct {
	Gold   int `json:"gold,omitempty"`
	Silver int `json:"silver,omitempty"`
	Bronze int `json:"bronze,omitempty"`
}

// BalloonColor is the colour pair of one problem.
type BalloonColor struct {
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// Logo locates the contest logo.
type Logo struct {
	Preset string `json:"preset,omitempty"`
	Base64 string `json:"base64,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Link holds external contest links.
type Link struct {
	Homepage     string `json:"homepage,omitempty"`
	Registration string `json:"registration,omitempty"`
}

// Banner locates the contest banner image.
type Banner struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// Options carries ranking options.
type Options struct {
	CalculationOfPenalty string `json:"calculation_of_penalty,omitempty"`
}

// GroupOption is one selectable group.
type GroupOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Window returns the contest time window.
func (c ContestConfig) Window() timeline.Window {
	return timeline.Window{Start: c.StartTime, End: c.EndTime}
}

// Groups returns the configured groups sorted by key.
func (c ContestConfig) Groups() []GroupOption {
	out := make([]GroupOption, 0, len(c.Group))
	for k, v := range c.Group {
		out = append(out, GroupOption{Key: k, Name: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// HasGroup reports whether key names a configured group.
func (c ContestConfig) HasGroup(key string) bool {
	_, ok := c.Group[key]
	return ok
}

// BannerURL returns a usable banner location or "" when none is configured.
func (c ContestConfig) BannerURL() string {
	if c.Banner == nil || c.Banner.Path == "" {
		return ""
	}
	p := c.Banner.Path
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
