package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newScoreboard(rankHits *atomic.Int64) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"data":{"contest_name":"Jinan","start_time":1000,"end_time":19000,"problem_id":["A","B","C"],"group":{"official":"Official"}}}`))
	})
	mux.HandleFunc("/api/rank/", func(w http.ResponseWriter, r *http.Request) {
		rankHits.Add(1)
		_, _ = w.Write([]byte(`{"code":0,"data":{"rows":[{"team_id":"t9","team":"Zeta","place":1,"solved":1,"problems":[{"solved":true,"first_solved":true,"submitted":1,"timestamp":12},{},{"frozen":true,"submitted":1}]}],"submitted":[1,0,1],"accepted":[1,0,0],"dirty":[0,0,0]}}`))
	})
	mux.HandleFunc("/api/stat/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a scoreboard over HTTP", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var rankHits atomic.Int64
		srv := newScoreboard(&rankHits)
		defer srv.Close()

		client, err := scoreapi.New(srv.URL, scoreapi.WithCache(cache.NewTTLCache()))
		So(err, ShouldBeNil)
		svc := service.New(client,
			service.WithLogger(logger.Get().Named("service")),
			service.WithSettleDelay(20*time.Millisecond))
		defer svc.Stop(ctx)

		Convey("When a live session mounts", func() {
			sess, err := svc.Open(ctx, "/icpc/jinan", url.Values{})
			So(err, ShouldBeNil)

			Convey("Then the board is rendered from the backend", func() {
				So(eventually(func() bool { return sess.Snapshot().Panel.Loaded }), ShouldBeTrue)
				rv := sess.Snapshot().Panel.Data.(service.RankView)
				So(rv.Problems, ShouldHaveLength, 3)
				So(rv.Rows[0].Team, ShouldEqual, "Zeta")
				So(rv.Rows[0].Cells[0].FirstSolved, ShouldBeTrue)
				So(rv.Rows[0].Cells[1].Symbol, ShouldEqual, "")
				So(rv.Rows[0].Cells[2].Symbol, ShouldEqual, "?")
				So(sess.Snapshot().Timeline.Duration, ShouldEqual, "05:00:00")
			})

			Convey("And returning to an earlier view is served from the session cache", func() {
				So(eventually(func() bool { return sess.Snapshot().Panel.Loaded }), ShouldBeTrue)
				So(sess.Dispatch(ctx, service.Event{Type: service.EventGroup, Group: "official"}), ShouldBeNil)
				So(eventually(func() bool {
					p := sess.Snapshot().Panel
					return p.Key.Group == "official" && !p.Loading
				}), ShouldBeTrue)
				So(sess.Dispatch(ctx, service.Event{Type: service.EventGroup, Group: "all"}), ShouldBeNil)
				So(eventually(func() bool {
					p := sess.Snapshot().Panel
					return p.Key.Group == view.GroupAll && !p.Loading
				}), ShouldBeTrue)
				So(rankHits.Load(), ShouldEqual, 2)
			})

			Convey("And a failing sub-view shows its error inline", func() {
				So(sess.Dispatch(ctx, service.Event{Type: service.EventAction, Action: "stats"}), ShouldBeNil)
				So(eventually(func() bool { return sess.Snapshot().Panel.Err != "" }), ShouldBeTrue)
				p := sess.Snapshot().Panel
				So(p.ErrorOnly, ShouldBeTrue)
				So(p.Err, ShouldContainSubstring, "500")
			})
		})

		Convey("When a one-shot view is requested", func() {
			res, err := svc.View(ctx, "icpc/jinan", url.Values{"t": {"3600000"}})

			Convey("Then the ranking is returned directly", func() {
				So(err, ShouldBeNil)
				So(res.Contest, ShouldEqual, "Jinan")
				So(res.Timeline.Elapsed, ShouldEqual, "01:00:00")
				So(res.Timeline.Remaining, ShouldEqual, "04:00:00")
				_, ok := res.Data.(service.RankView)
				So(ok, ShouldBeTrue)
			})
		})
	})
}
