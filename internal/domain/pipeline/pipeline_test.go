package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/domain/model"
	"github.com/hireloop/hireloop/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a candidate store", t, func() {
		ctx := context.Background()
		s := pipeline.New()
		ada := model.Candidate{
			ID:        "cand-1",
			Name:      "Ada",
			Stage:     model.StageApplied,
			AppliedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		}
		s.Commit(ctx, ada)

		Convey("When reading a candidate", func() {
			got, err := s.Get(ctx, "cand-1")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, ada)

			Convey("Then the returned copy is detached from the store", func() {
				got.Stage = model.StageHired
				again, _ := s.Get(ctx, "cand-1")
				So(again.Stage, ShouldEqual, model.StageApplied)
			})
		})

		Convey("When reading an unknown candidate", func() {
			_, err := s.Get(ctx, "ghost")
			So(err, ShouldWrap, pipeline.ErrNotFound)
		})

		Convey("When a speculative stage change is published and restored", func() {
			snapshot, _ := s.Get(ctx, "cand-1")

			spec := snapshot
			spec.Stage = model.StageScreen
			s.Publish(ctx, spec)

			visible, _ := s.Get(ctx, "cand-1")
			So(visible.Stage, ShouldEqual, model.StageScreen)

			s.Restore(ctx, snapshot)
			restored, _ := s.Get(ctx, "cand-1")
			So(restored, ShouldResemble, snapshot)
		})

		Convey("When listing candidates", func() {
			s.Commit(ctx, model.Candidate{
				ID:        "cand-0",
				Name:      "Grace",
				Stage:     model.StageApplied,
				AppliedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
			})

			all := s.All(ctx)
			So(all, ShouldHaveLength, 2)
			So(all[0].ID, ShouldEqual, "cand-0")
			So(all[1].ID, ShouldEqual, "cand-1")
			So(s.Count(ctx), ShouldEqual, 2)
		})

		Convey("When a candidate is written repeatedly", func() {
			before := s.Revision(ctx, "cand-1")
			s.Commit(ctx, ada)
			So(s.Revision(ctx, "cand-1"), ShouldEqual, before+1)
		})
	})
}
