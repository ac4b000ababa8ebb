package view

import (
	"fmt"
	"net/url"
	"strconv"
)

// URL parameter names.
const (
	ParamGroup    = "group"
	ParamAction   = "action"
	ParamTime     = "t"
	ParamPage     = "page"
	ParamSize     = "size"
	ParamSchool   = "school"
	ParamTeam     = "team"
	ParamLanguage = "language"
	ParamStatus   = "status"
)

// Encode serialises s into query parameters. Defaults are left out so a
// fresh viewer has an empty query.
func Encode(s State) url.Values {
	v := url.Values{}
	if s.Group != "" && s.Group != GroupAll {
		v.Set(ParamGroup, s.Group)
	}
	if s.Action != "" && s.Action != ActionRank {
		v.Set(ParamAction, string(s.Action))
	}
	if s.HasTime {
		v.Set(ParamTime, strconv.FormatInt(s.RelativeMs, 10))
	}
	if s.Action == ActionSubmit {
		v.Set(ParamPage, strconv.Itoa(s.Page.Number))
		v.Set(ParamSize, strconv.Itoa(s.Page.Size))
		setIf(v, ParamSchool, s.Filters.School)
		setIf(v, ParamTeam, s.Filters.Team)
		setIf(v, ParamLanguage, s.Filters.Language)
		setIf(v, ParamStatus, s.Filters.Status)
	}
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// Decode restores a State from query parameters.
func Decode(v url.Values, defaultPageSize int) (State, error) {
	s := NewState(defaultPageSize)
	if g := v.Get(ParamGroup); g != "" {
		s.Group = g
	}
	a, err := ParseAction(v.Get(ParamAction))
	if err != nil {
		return State{}, err
	}
	s.Action = a

	if raw := v.Get(ParamTime); raw != "" {
		t, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || t < 0 {
			return State{}, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
		s.RelativeMs, s.HasTime = t, true
	}

	if s.Page.Number, err = intParam(v, ParamPage, s.Page.Number); err != nil {
		return State{}, err
	}
	if s.Page.Size, err = intParam(v, ParamSize, s.Page.Size); err != nil {
		return State{}, err
	}
	s.Filters = Filters{
		School:   v.Get(ParamSchool),
		Team:     v.Get(ParamTeam),
		Language: v.Get(ParamLanguage),
		Status:   v.Get(ParamStatus),
	}
	return normalize(s), nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPage, key, raw)
	}
	return n, nil
}
