package scoreapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	path  string
	query url.Values
}

func newBackend(handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded, *atomic.Int64) {
	var calls []recorded
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		calls = append(calls, recorded{path: r.URL.Path, query: r.URL.Query()})
		handler(w, r)
	}))
	return srv, &calls, &n
}

func writeBody(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestClientRequests(t *testing.T) {
	Convey("Given a backend returning enveloped payloads", t, func() {
		ctx := context.Background()
		srv, calls, _ := newBackend(writeBody(`{"code":0,"data":{"rows":[{"team_id":"t1","team":"Alpha","place":1,"solved":3}],"submitted":[4]}}`))
		defer srv.Close()
		c, err := scoreapi.New(srv.URL)
		So(err, ShouldBeNil)

		Convey("When requesting a rank without a time", func() {
			rank, err := c.Rank(ctx, "/icpc/2023/nanjing", scoreapi.RankQuery{})

			Convey("Then group is always sent and t is omitted", func() {
				So(err, ShouldBeNil)
				So(rank.Rows, ShouldHaveLength, 1)
				So(rank.Rows[0].Team, ShouldEqual, "Alpha")
				So((*calls)[0].path, ShouldEqual, "/api/rank/icpc/2023/nanjing")
				So((*calls)[0].query.Get("group"), ShouldEqual, "all")
				So((*calls)[0].query.Has("t"), ShouldBeFalse)
			})
		})

		Convey("When requesting a rank at a time", func() {
			_, err := c.Rank(ctx, "icpc/2023/nanjing", scoreapi.RankQuery{T: scoreapi.Time(1_800_000), Group: "official"})

			Convey("Then t and group are encoded", func() {
				So(err, ShouldBeNil)
				So((*calls)[0].query.Get("t"), ShouldEqual, "1800000")
				So((*calls)[0].query.Get("group"), ShouldEqual, "official")
			})
		})

		Convey("When requesting runs for all teams", func() {
			_, _ = c.Runs(ctx, "icpc/2023/nanjing", scoreapi.RunQuery{
				Group: "all", T: scoreapi.Time(0), Page: 2, Size: 50, TeamID: "t1",
			})

			Convey("Then the group is omitted and pagination sent", func() {
				q := (*calls)[0].query
				So((*calls)[0].path, ShouldEqual, "/api/run/icpc/2023/nanjing")
				So(q.Has("group"), ShouldBeFalse)
				So(q.Get("t"), ShouldEqual, "0")
				So(q.Get("page"), ShouldEqual, "2")
				So(q.Get("size"), ShouldEqual, "50")
				So(q.Get("team_id"), ShouldEqual, "t1")
				So(q.Has("school"), ShouldBeFalse)
			})
		})

		Convey("When requesting stats for a group", func() {
			_, _ = c.Stats(ctx, "icpc/2023/nanjing", scoreapi.StatQuery{Group: "girls"})

			Convey("Then the group is sent", func() {
				So((*calls)[0].path, ShouldEqual, "/api/stat/icpc/2023/nanjing")
				So((*calls)[0].query.Get("group"), ShouldEqual, "girls")
			})
		})

		Convey("When the contest path is empty", func() {
			_, err := c.Rank(ctx, "/", scoreapi.RankQuery{})

			Convey("Then no request is made", func() {
				So(errors.Is(err, scoreapi.ErrInvalidPath), ShouldBeTrue)
				So(*calls, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a backend returning bare payloads", t, func() {
		ctx := context.Background()
		srv, calls, _ := newBackend(writeBody(`[{"board_link":"/icpc/2023/nanjing","config":{"contest_name":"Nanjing","start_time":1000,"end_time":4600}}]`))
		defer srv.Close()
		c, _ := scoreapi.New(srv.URL + "/")

		Convey("When listing contests by name", func() {
			list, err := c.Contests(ctx, scoreapi.ContestsQuery{ContestName: "Nanjing"})

			Convey("Then the payload is decoded as is", func() {
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].Config.Window().DurationMs(), ShouldEqual, 3_600_000)
				So((*calls)[0].path, ShouldEqual, "/api/contests")
				So((*calls)[0].query.Get("contest_name"), ShouldEqual, "Nanjing")
			})
		})
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given failing backends", t, func() {
		ctx := context.Background()

		Convey("When the envelope carries a failure code", func() {
			srv, _, _ := newBackend(writeBody(`{"code":404,"message":"contest not found"}`))
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Config(ctx, "nope", nil)

			Convey("Then ErrAPI is returned with the message", func() {
				So(errors.Is(err, scoreapi.ErrAPI), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "contest not found")
			})
		})

		Convey("When the envelope has no data", func() {
			srv, _, _ := newBackend(writeBody(`{"code":0,"data":null}`))
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Stats(ctx, "x", scoreapi.StatQuery{})

			Convey("Then ErrMalformed is returned", func() {
				So(errors.Is(err, scoreapi.ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			srv, _, _ := newBackend(writeBody(`<html>`))
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.TeamTrend(ctx, "x", "t1")

			Convey("Then ErrMalformed is returned", func() {
				So(errors.Is(err, scoreapi.ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When the status is not 2xx", func() {
			srv, _, _ := newBackend(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Rank(ctx, "x", scoreapi.RankQuery{})

			Convey("Then ErrStatus is returned", func() {
				So(errors.Is(err, scoreapi.ErrStatus), ShouldBeTrue)
			})
		})

		Convey("When a failed status carries the backend's error body", func() {
			srv, _, _ := newBackend(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":400,"error":"invalid group: juniors"}`))
			})
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Rank(ctx, "x", scoreapi.RankQuery{Group: "juniors"})

			Convey("Then the backend's reason is kept", func() {
				So(errors.Is(err, scoreapi.ErrStatus), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "400")
				So(err.Error(), ShouldContainSubstring, "invalid group: juniors")
			})
		})

		Convey("When the envelope reports its failure under error", func() {
			srv, _, _ := newBackend(writeBody(`{"code":500,"error":"database down"}`))
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Stats(ctx, "x", scoreapi.StatQuery{})

			Convey("Then ErrAPI carries the message", func() {
				So(errors.Is(err, scoreapi.ErrAPI), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "database down")
			})
		})

		Convey("When the context is cancelled before the request", func() {
			srv, _, hits := newBackend(writeBody(`{"code":0,"data":[]}`))
			defer srv.Close()
			c, _ := scoreapi.New(srv.URL, scoreapi.WithRateLimit(1))
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.TeamTrend(cctx, "x", "t1")

			Convey("Then nothing is sent", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the backend is unreachable", func() {
			srv, _, _ := newBackend(writeBody(`{}`))
			srv.Close()
			c, _ := scoreapi.New(srv.URL)
			_, err := c.Rank(ctx, "x", scoreapi.RankQuery{})

			Convey("Then ErrTransport is returned", func() {
				So(errors.Is(err, scoreapi.ErrTransport), ShouldBeTrue)
			})
		})

		Convey("When the base url is relative", func() {
			_, err := scoreapi.New("/api")

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestClientEmptyResults(t *testing.T) {
	Convey("Given a backend with no submissions", t, func() {
		srv, _, _ := newBackend(writeBody(`{"code":200,"data":{"total":0,"data":[],"schools":[],"participants":[]}}`))
		defer srv.Close()
		c, _ := scoreapi.New(srv.URL)

		Convey("When fetching runs", func() {
			page, err := c.Runs(context.Background(), "x", scoreapi.RunQuery{Page: 1, Size: 50})

			Convey("Then an empty page is not an error", func() {
				So(err, ShouldBeNil)
				So(page.Empty(), ShouldBeTrue)
			})
		})
	})
}

func TestClientCacheAndLimit(t *testing.T) {
	Convey("Given a client with a cache and a rate limit", t, func() {
		ctx := context.Background()
		srv, _, hits := newBackend(writeBody(`{"code":0,"data":[{"place":3,"time":60000}]}`))
		defer srv.Close()
		rc := cache.NewTTLCache()
		c, _ := scoreapi.New(srv.URL, scoreapi.WithCache(rc), scoreapi.WithRateLimit(1000))

		Convey("When the same request is made twice", func() {
			first, err := c.TeamTrend(ctx, "x", "t1")
			So(err, ShouldBeNil)
			second, err := c.TeamTrend(ctx, "x", "t1")
			So(err, ShouldBeNil)

			Convey("Then the backend is hit once", func() {
				So(hits.Load(), ShouldEqual, 1)
				So(second, ShouldResemble, first)
				So(first[0].Place, ShouldEqual, 3)
			})
		})

		Convey("When the uncached view of the client is used", func() {
			_, _ = c.TeamTrend(ctx, "x", "t1")
			_, err := c.Uncached().TeamTrend(ctx, "x", "t1")

			Convey("Then the request bypasses the shared cache", func() {
				So(err, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 2)
				So(rc.Len(), ShouldEqual, 1)
			})
		})

		Convey("When another team is requested", func() {
			_, _ = c.TeamTrend(ctx, "x", "t1")
			_, _ = c.TeamTrend(ctx, "x", "t2")

			Convey("Then both go to the backend", func() {
				So(hits.Load(), ShouldEqual, 2)
				So(rc.Len(), ShouldEqual, 2)
			})
		})
	})
}
