package view_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/okian/scoreview/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseAction(t *testing.T) {
	Convey("Given action names", t, func() {
		Convey("Then known names and the empty string resolve", func() {
			a, err := view.ParseAction("")
			So(err, ShouldBeNil)
			So(a, ShouldEqual, view.ActionRank)

			a, err = view.ParseAction("Submit")
			So(err, ShouldBeNil)
			So(a, ShouldEqual, view.ActionSubmit)
		})

		Convey("Then unknown names fail", func() {
			_, err := view.ParseAction("balloon")
			So(errors.Is(err, view.ErrUnknownAction), ShouldBeTrue)
		})
	})
}

func TestReduce(t *testing.T) {
	Convey("Given a fresh state", t, func() {
		s := view.NewState(50)

		Convey("When the group changes", func() {
			next, key := view.Reduce(s, view.GroupChanged{Group: "official"})

			Convey("Then the key carries the group", func() {
				So(next.Group, ShouldEqual, "official")
				So(key.Group, ShouldEqual, "official")
				So(key.Action, ShouldEqual, view.ActionRank)
			})

			Convey("And clearing it falls back to all", func() {
				next, _ = view.Reduce(next, view.GroupChanged{Group: ""})
				So(next.Group, ShouldEqual, view.GroupAll)
			})
		})

		Convey("When the action is not a known sub-view", func() {
			next, key := view.Reduce(s, view.ActionChanged{Action: "dance"})

			Convey("Then the ranking is shown", func() {
				So(next.Action, ShouldEqual, view.ActionRank)
				So(key.Action, ShouldEqual, view.ActionRank)
			})

			Convey("And a known action in another case is kept", func() {
				next, _ = view.Reduce(s, view.ActionChanged{Action: "Stats"})
				So(next.Action, ShouldEqual, view.ActionStats)
			})
		})

		Convey("When a time is committed", func() {
			_, key := view.Reduce(s, view.TimeChanged{RelativeMs: 1_800_000})

			Convey("Then the key resolves the time", func() {
				So(key.HasTime, ShouldBeTrue)
				So(key.RelativeMs, ShouldEqual, 1_800_000)
			})
		})

		Convey("When browsing submissions", func() {
			s, _ = view.Reduce(s, view.ActionChanged{Action: view.ActionSubmit})
			s, _ = view.Reduce(s, view.PageChanged{Number: 4})

			Convey("Then a filter change resets the page", func() {
				next, key := view.Reduce(s, view.FilterChanged{Field: view.FilterSchool, Value: "MIT"})
				So(next.Page.Number, ShouldEqual, 1)
				So(key.Filters.School, ShouldEqual, "MIT")
				So(key.Page.Size, ShouldEqual, 50)
			})

			Convey("Then a reset clears filters and page", func() {
				s, _ = view.Reduce(s, view.FilterChanged{Field: view.FilterStatus, Value: "Accepted"})
				s, _ = view.Reduce(s, view.PageChanged{Number: 3})
				next, _ := view.Reduce(s, view.FiltersReset{})
				So(next.Filters.Empty(), ShouldBeTrue)
				So(next.Page.Number, ShouldEqual, 1)
			})

			Convey("Then invalid pages clamp", func() {
				next, _ := view.Reduce(s, view.PageChanged{Number: -2, Size: 0})
				So(next.Page.Number, ShouldEqual, 1)
				So(next.Page.Size, ShouldEqual, 50)
			})

			Convey("Then switching away drops pagination from the key", func() {
				next, key := view.Reduce(s, view.ActionChanged{Action: view.ActionStats})
				So(next.Page.Number, ShouldEqual, 4)
				So(key.Page, ShouldResemble, view.Page{})
				So(key.Filters.Empty(), ShouldBeTrue)
			})
		})

		Convey("When two states differ only in pagination outside submissions", func() {
			a := s
			b := s
			b.Page.Number = 9

			Convey("Then their keys are equal", func() {
				So(a.Key() == b.Key(), ShouldBeTrue)
				So(a.Key().Signature(), ShouldEqual, b.Key().Signature())
			})
		})
	})
}

func TestEncodeDecode(t *testing.T) {
	Convey("Given the default state", t, func() {
		s := view.NewState(50)

		Convey("Then it encodes to an empty query", func() {
			So(view.Encode(s), ShouldBeEmpty)
		})
	})

	Convey("Given a submissions state", t, func() {
		s := view.NewState(50)
		s, _ = view.Reduce(s, view.ActionChanged{Action: view.ActionSubmit})
		s, _ = view.Reduce(s, view.GroupChanged{Group: "girls"})
		s, _ = view.Reduce(s, view.TimeChanged{RelativeMs: 600_000})
		s, _ = view.Reduce(s, view.FilterChanged{Field: view.FilterTeam, Value: "t42"})
		s, _ = view.Reduce(s, view.PageChanged{Number: 2, Size: 20})

		v := view.Encode(s)

		Convey("Then every non-default field is present", func() {
			So(v.Get("group"), ShouldEqual, "girls")
			So(v.Get("action"), ShouldEqual, "submit")
			So(v.Get("t"), ShouldEqual, "600000")
			So(v.Get("page"), ShouldEqual, "2")
			So(v.Get("size"), ShouldEqual, "20")
			So(v.Get("team"), ShouldEqual, "t42")
			So(v.Has("school"), ShouldBeFalse)
		})

		Convey("Then decoding restores the state", func() {
			back, err := view.Decode(v, 50)
			So(err, ShouldBeNil)
			So(back, ShouldResemble, s)
		})
	})

	Convey("Given round trips for each action", t, func() {
		for _, a := range view.Actions {
			s := view.NewState(50)
			s, _ = view.Reduce(s, view.ActionChanged{Action: a})
			s, _ = view.Reduce(s, view.TimeChanged{RelativeMs: 42})
			back, err := view.Decode(view.Encode(s), 50)
			So(err, ShouldBeNil)
			So(back.Key(), ShouldResemble, s.Key())
		}
	})

	Convey("Given malformed queries", t, func() {
		Convey("Then a bad time is rejected", func() {
			_, err := view.Decode(url.Values{"t": {"soon"}}, 50)
			So(errors.Is(err, view.ErrInvalidTime), ShouldBeTrue)
		})

		Convey("Then an unknown action is rejected", func() {
			_, err := view.Decode(url.Values{"action": {"nope"}}, 50)
			So(errors.Is(err, view.ErrUnknownAction), ShouldBeTrue)
		})

		Convey("Then a bad page is rejected", func() {
			_, err := view.Decode(url.Values{"page": {"x"}}, 50)
			So(errors.Is(err, view.ErrInvalidPage), ShouldBeTrue)
		})

		Convey("Then a missing time stays unresolved", func() {
			s, err := view.Decode(url.Values{}, 50)
			So(err, ShouldBeNil)
			So(s.HasTime, ShouldBeFalse)
			So(s.Page, ShouldResemble, view.Page{Number: 1, Size: 50})
		})
	})
}
