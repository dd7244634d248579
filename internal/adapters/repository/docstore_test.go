package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hireloop/hireloop/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

// exercise runs the shared DocStore contract against any implementation.
func exercise(store repository.DocStore) {
	ctx := context.Background()

	Convey("When documents are stored under prefixed keys", func() {
		So(store.Put(ctx, "job/1", []byte(`{"id":"1"}`)), ShouldBeNil)
		So(store.Put(ctx, "job/2", []byte(`{"id":"2"}`)), ShouldBeNil)
		So(store.Put(ctx, "cand/9", []byte(`{"id":"9"}`)), ShouldBeNil)

		Convey("Then Get returns what was stored", func() {
			v, err := store.Get(ctx, "job/1")
			So(err, ShouldBeNil)
			So(string(v), ShouldEqual, `{"id":"1"}`)
		})

		Convey("Then List and Count honor the prefix", func() {
			docs, err := store.List(ctx, "job/")
			So(err, ShouldBeNil)
			So(docs, ShouldHaveLength, 2)
			So(docs, ShouldContainKey, "job/2")

			n, err := store.Count(ctx, "cand/")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Then Put overwrites in place", func() {
			So(store.Put(ctx, "job/1", []byte(`{"id":"1","order":3}`)), ShouldBeNil)
			v, err := store.Get(ctx, "job/1")
			So(err, ShouldBeNil)
			So(string(v), ShouldEqual, `{"id":"1","order":3}`)
		})

		Convey("Then Delete removes a document and tolerates absent keys", func() {
			So(store.Delete(ctx, "job/2"), ShouldBeNil)
			_, err := store.Get(ctx, "job/2")
			So(err, ShouldWrap, repository.ErrNotFound)
			So(store.Delete(ctx, "job/2"), ShouldBeNil)
		})
	})

	Convey("When reading a key that was never written", func() {
		_, err := store.Get(ctx, "missing/key")
		So(err, ShouldWrap, repository.ErrNotFound)
	})
}

func TestMemStore(t *testing.T) {
	Convey("Given an in-memory document store", t, func() {
		store := repository.NewMemStore()
		defer store.Close()
		exercise(store)

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)
			_, err := store.Get(context.Background(), "job/1")
			So(err, ShouldWrap, repository.ErrClosed)
		})
	})
}

func TestBadgerStore(t *testing.T) {
	Convey("Given an in-memory badger document store", t, func() {
		store, err := repository.NewBadgerStore()
		So(err, ShouldBeNil)
		defer store.Close()
		exercise(store)
	})
}

func TestBadgerStoreOnDisk(t *testing.T) {
	Convey("Given a badger store persisted to a temp directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		store, err := repository.NewBadgerStore(repository.WithPath(dir), repository.WithSyncWrites(false))
		So(err, ShouldBeNil)
		for i := 1; i <= 3; i++ {
			key := fmt.Sprintf("hist/cand-1/%d", i)
			So(store.Put(ctx, key, []byte(`{}`)), ShouldBeNil)
		}
		So(store.Close(), ShouldBeNil)

		Convey("When the store is reopened from the same directory", func() {
			reopened, err := repository.NewBadgerStore(repository.WithPath(dir), repository.WithSyncWrites(false))
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then previously written documents are still there", func() {
				n, err := reopened.Count(ctx, "hist/cand-1/")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}
