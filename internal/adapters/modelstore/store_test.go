package modelstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStoreLoad(t *testing.T) {
	Convey("Given a model store", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		Convey("When the artifact file is missing", func() {
			s := New(dir, "absent.pkl")
			loaded, err := s.Load(ctx)

			Convey("Then it should report no model without an error", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeFalse)
				So(s.Loaded(), ShouldBeFalse)

				_, aerr := s.Artifact()
				So(errors.Is(aerr, ErrNotLoaded), ShouldBeTrue)
			})
		})

		Convey("When the artifact file exists", func() {
			content := []byte("weights-v1")
			So(os.WriteFile(filepath.Join(dir, "model.pkl"), content, 0o600), ShouldBeNil)

			s := New(dir, "model.pkl", WithClock(func() time.Time { return fixed }))
			loaded, err := s.Load(ctx)

			Convey("Then the artifact should be held with its metadata", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeTrue)
				So(s.Loaded(), ShouldBeTrue)

				a, aerr := s.Artifact()
				So(aerr, ShouldBeNil)
				sum := sha256.Sum256(content)
				So(a.Path, ShouldEqual, filepath.Join(dir, "model.pkl"))
				So(a.Size, ShouldEqual, int64(len(content)))
				So(a.Checksum, ShouldEqual, hex.EncodeToString(sum[:]))
				So(a.LoadedAt, ShouldEqual, fixed)
			})

			Convey("And Unload should drop it", func() {
				s.Unload()
				So(s.Loaded(), ShouldBeFalse)
			})
		})

		Convey("When the artifact path is a directory", func() {
			So(os.Mkdir(filepath.Join(dir, "model.pkl"), 0o755), ShouldBeNil)

			s := New(dir, "model.pkl")
			loaded, err := s.Load(ctx)

			Convey("Then it should fail with ErrModelLoad", func() {
				So(loaded, ShouldBeFalse)
				So(errors.Is(err, ErrModelLoad), ShouldBeTrue)
				So(errors.Is(err, ErrNotAFile), ShouldBeTrue)
			})
		})

		Convey("When the artifact name is empty", func() {
			s := New(dir, "")
			_, err := s.Load(ctx)

			Convey("Then it should fail with ErrModelLoad", func() {
				So(errors.Is(err, ErrModelLoad), ShouldBeTrue)
				So(errors.Is(err, ErrEmptyName), ShouldBeTrue)
			})
		})

		Convey("When options are nil", func() {
			s := New(dir, "model.pkl", WithLogger(nil), WithClock(nil))

			Convey("Then defaults should be kept", func() {
				So(s.log, ShouldNotBeNil)
				So(s.now, ShouldNotBeNil)
				So(s.Path(), ShouldEqual, filepath.Join(dir, "model.pkl"))
			})
		})
	})
}
