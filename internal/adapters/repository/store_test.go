package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/typerank/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

// storeContract exercises the behavior every backend shares.
func storeContract(newStore func() repository.Store) {
	ctx := context.Background()
	store := newStore()

	Convey("When nothing has been saved", func() {
		_, err := store.Load(ctx)

		Convey("Then Load should report no document", func() {
			So(errors.Is(err, repository.ErrNoDocument), ShouldBeTrue)
		})
	})

	Convey("When a document is saved", func() {
		So(store.Save(ctx, []byte(`{"easy":{"alice":50}}`)), ShouldBeNil)

		Convey("Then Load should return the same bytes", func() {
			data, err := store.Load(ctx)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"easy":{"alice":50}}`)
		})

		Convey("And a second save should replace it wholesale", func() {
			So(store.Save(ctx, []byte(`{}`)), ShouldBeNil)
			data, err := store.Load(ctx)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{}`)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		storeContract(func() repository.Store { return repository.NewMemoryStore() })

		Convey("When the caller mutates saved or loaded slices", func() {
			ctx := context.Background()
			s := repository.NewMemoryStore()
			in := []byte(`{"a":1}`)
			So(s.Save(ctx, in), ShouldBeNil)
			in[2] = 'X'
			out, _ := s.Load(ctx)
			out[2] = 'Y'

			Convey("Then the stored bytes should be unaffected", func() {
				again, err := s.Load(ctx)
				So(err, ShouldBeNil)
				So(string(again), ShouldEqual, `{"a":1}`)
			})
		})
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a temp dir", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "leaderboard.json")

		storeContract(func() repository.Store { return repository.NewFileStore(path) })

		Convey("When loading before any save", func() {
			s := repository.NewFileStore(path)
			_, err := s.Load(context.Background())

			Convey("Then the file should not be created", func() {
				So(errors.Is(err, repository.ErrNoDocument), ShouldBeTrue)
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When saving", func() {
			s := repository.NewFileStore(path, repository.WithFileMode(0o600))
			So(s.Save(context.Background(), []byte(`{}`)), ShouldBeNil)

			Convey("Then no temp files should remain and the mode should apply", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Name(), ShouldEqual, "leaderboard.json")

				info, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
				So(s.Path(), ShouldEqual, path)
			})
		})

		Convey("When the target directory cannot be created", func() {
			blocker := filepath.Join(dir, "blocker")
			So(os.WriteFile(blocker, []byte("x"), 0o600), ShouldBeNil)
			s := repository.NewFileStore(filepath.Join(blocker, "leaderboard.json"))

			Convey("Then Save should fail", func() {
				So(s.Save(context.Background(), []byte(`{}`)), ShouldNotBeNil)
			})
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a sqlite store", t, func() {
		ctx := context.Background()

		storeContract(func() repository.Store {
			s, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "board.db"))
			So(err, ShouldBeNil)
			Reset(func() { _ = s.Close() })
			return s
		})

		Convey("When two documents share one database", func() {
			path := filepath.Join(t.TempDir(), "shared.db")
			a, err := repository.OpenSQLite(ctx, path, repository.WithDocumentName("a"))
			So(err, ShouldBeNil)
			So(a.Save(ctx, []byte(`{"x":1}`)), ShouldBeNil)
			So(a.Close(), ShouldBeNil)

			b, err := repository.OpenSQLite(ctx, path, repository.WithDocumentName("b"))
			So(err, ShouldBeNil)
			defer func() { _ = b.Close() }()

			Convey("Then each name should be isolated", func() {
				_, err := b.Load(ctx)
				So(errors.Is(err, repository.ErrNoDocument), ShouldBeTrue)
			})
		})

		Convey("When reopening a database", func() {
			path := filepath.Join(t.TempDir(), "reopen.db")
			first, err := repository.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			So(first.Save(ctx, []byte(`{"hard":{}}`)), ShouldBeNil)
			So(first.Close(), ShouldBeNil)

			second, err := repository.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = second.Close() }()

			Convey("Then the document should persist", func() {
				data, err := second.Load(ctx)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"hard":{}}`)
			})
		})
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TYPERANK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TYPERANK_TEST_REDIS_ADDR not set")
	}

	Convey("Given a redis store", t, func() {
		ctx := context.Background()

		storeContract(func() repository.Store {
			key := "typerank:test:" + uuid.NewString()
			s, err := repository.DialRedis(ctx, addr, "", 0, repository.WithRedisKey(key))
			So(err, ShouldBeNil)
			Reset(func() { _ = s.Close() })
			return s
		})
	})
}

func TestDialRedisFailure(t *testing.T) {
	Convey("Given an address nothing listens on", t, func() {
		_, err := repository.DialRedis(context.Background(), "127.0.0.1:1", "", 0)

		Convey("Then dialing should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
