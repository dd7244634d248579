package journal_test

import (
	"context"
	"testing"

	"github.com/hireloop/hireloop/internal/adapters/journal"
	"github.com/hireloop/hireloop/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJournal(t *testing.T) {
	Convey("Given a journal over an in-memory document store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		j := journal.New(store, journal.WithCapacity(16))
		j.Start(ctx)

		Convey("When records are enqueued and the journal is closed", func() {
			So(j.Enqueue(ctx, journal.Record{Key: "job/1", Value: []byte(`{"order":1}`)}), ShouldBeTrue)
			So(j.Enqueue(ctx, journal.Record{Key: "job/2", Value: []byte(`{"order":2}`)}), ShouldBeTrue)
			So(j.Close(), ShouldBeNil)

			Convey("Then every queued write reached the store", func() {
				v, err := store.Get(ctx, "job/1")
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, `{"order":1}`)

				n, err := store.Count(ctx, "job/")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})

			Convey("And enqueue after close is refused", func() {
				So(j.Enqueue(ctx, journal.Record{Key: "job/3"}), ShouldBeFalse)
			})
		})

		Convey("When Close is called twice", func() {
			So(j.Close(), ShouldBeNil)
			So(j.Close(), ShouldBeNil)
		})
	})
}

func TestJournalBackpressure(t *testing.T) {
	Convey("Given a journal that was never started", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		j := journal.New(store, journal.WithCapacity(2))

		Convey("When the queue fills up", func() {
			So(j.Enqueue(ctx, journal.Record{Key: "a"}), ShouldBeTrue)
			So(j.Enqueue(ctx, journal.Record{Key: "b"}), ShouldBeTrue)

			Convey("Then further writes are dropped, not blocked", func() {
				So(j.Enqueue(ctx, journal.Record{Key: "c"}), ShouldBeFalse)
				So(j.Len(), ShouldEqual, 2)
			})
		})
	})
}
