package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/scoreview/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTTLCache(t *testing.T) {
	Convey("Given a new TTL cache", t, func() {
		ctx := context.Background()

		Convey("When created with defaults", func() {
			c := cache.NewTTLCache()

			Convey("Then it starts empty", func() {
				So(c, ShouldNotBeNil)
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a value is stored", func() {
			c := cache.NewTTLCache()
			c.Set(ctx, "rank|g=all|t=1", "payload")

			Convey("Then it is returned", func() {
				v, ok := c.Get(ctx, "rank|g=all|t=1")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "payload")
				So(c.Len(), ShouldEqual, 1)
			})

			Convey("Then other keys miss", func() {
				_, ok := c.Get(ctx, "rank|g=all|t=2")
				So(ok, ShouldBeFalse)
			})

			Convey("And the cache is purged", func() {
				c.Purge()

				Convey("Then nothing remains", func() {
					_, ok := c.Get(ctx, "rank|g=all|t=1")
					So(ok, ShouldBeFalse)
					So(c.Len(), ShouldEqual, 0)
				})
			})
		})

		Convey("When entries outlive the TTL", func() {
			c := cache.NewTTLCache(cache.WithTTL(20 * time.Millisecond))
			c.Set(ctx, "k", 1)
			time.Sleep(60 * time.Millisecond)

			Convey("Then they expire", func() {
				_, ok := c.Get(ctx, "k")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When more entries than the capacity are stored", func() {
			c := cache.NewTTLCache(cache.WithMaxEntries(2))
			c.Set(ctx, "a", 1)
			c.Set(ctx, "b", 2)
			c.Set(ctx, "c", 3)

			Convey("Then the oldest is evicted", func() {
				So(c.Len(), ShouldEqual, 2)
				_, ok := c.Get(ctx, "a")
				So(ok, ShouldBeFalse)
				v, ok := c.Get(ctx, "c")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 3)
			})
		})

		Convey("When used concurrently", func() {
			c := cache.NewTTLCache(cache.WithMaxEntries(1000))
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						key := fmt.Sprintf("%d-%d", n, j)
						c.Set(ctx, key, j)
						c.Get(ctx, key)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every entry is kept", func() {
				So(c.Len(), ShouldEqual, 400)
			})
		})
	})
}
