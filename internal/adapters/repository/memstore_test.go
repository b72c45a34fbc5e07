package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mergington/activities/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewInMemoryStore(t *testing.T) {
	Convey("Given the in-memory store constructor", t, func() {
		ctx := context.Background()

		Convey("When building with the default seed", func() {
			store, err := NewInMemoryStore(ctx)

			Convey("Then every default activity should be present", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, len(DefaultActivities()))
				So(store.CapacityEnforced(), ShouldBeFalse)

				all, err := store.List(ctx)
				So(err, ShouldBeNil)
				for _, name := range []string{"Basketball Team", "Tennis Club", "Art Studio", "Chess Club", "Debate Team", "Programming Class", "Gym Class"} {
					So(all, ShouldContainKey, name)
				}
			})
		})

		Convey("When building with a custom seed", func() {
			store, err := NewInMemoryStore(ctx, WithSeed(map[string]model.Activity{
				"Robotics": {Description: "Build robots", Schedule: "Saturdays", MaxParticipants: 4},
			}), WithCapacityEnforcement(true))

			Convey("Then only the custom activities should be present", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.CapacityEnforced(), ShouldBeTrue)

				a, err := store.Get(ctx, "Robotics")
				So(err, ShouldBeNil)
				So(a.Participants, ShouldNotBeNil)
				So(a.Participants, ShouldBeEmpty)
			})
		})

		Convey("When the seed has an empty name", func() {
			_, err := NewInMemoryStore(ctx, WithSeed(map[string]model.Activity{" ": {MaxParticipants: 1}}))

			Convey("Then construction should fail with ErrInvalidSeed", func() {
				So(errors.Is(err, ErrInvalidSeed), ShouldBeTrue)
			})
		})

		Convey("When the seed has a negative capacity", func() {
			_, err := NewInMemoryStore(ctx, WithSeed(map[string]model.Activity{"Choir": {MaxParticipants: -1}}))

			Convey("Then construction should fail with ErrInvalidSeed", func() {
				So(errors.Is(err, ErrInvalidSeed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Choir")
			})
		})

		Convey("When the seed repeats a participant", func() {
			_, err := NewInMemoryStore(ctx, WithSeed(map[string]model.Activity{
				"Choir": {MaxParticipants: 5, Participants: []string{"a@mergington.edu", "a@mergington.edu"}},
			}))

			Convey("Then construction should fail with ErrInvalidSeed", func() {
				So(errors.Is(err, ErrInvalidSeed), ShouldBeTrue)
			})
		})

		Convey("When the caller mutates the seed after construction", func() {
			seed := map[string]model.Activity{"Choir": {MaxParticipants: 5, Participants: []string{"a@mergington.edu"}}}
			store, err := NewInMemoryStore(ctx, WithSeed(seed))
			So(err, ShouldBeNil)
			seed["Choir"].Participants[0] = "mutated@mergington.edu"

			Convey("Then the store should keep its own copy", func() {
				a, err := store.Get(ctx, "Choir")
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{"a@mergington.edu"})
			})
		})
	})
}

func TestInMemoryStoreRoster(t *testing.T) {
	Convey("Given a seeded store", t, func() {
		ctx := context.Background()
		store, err := NewInMemoryStore(ctx)
		So(err, ShouldBeNil)

		Convey("When adding a new participant", func() {
			before, _ := store.Get(ctx, "Chess Club")
			a, err := store.AddParticipant(ctx, "Chess Club", "new@mergington.edu")

			Convey("Then the roster should grow by one at the end", func() {
				So(err, ShouldBeNil)
				So(len(a.Participants), ShouldEqual, len(before.Participants)+1)
				So(a.Participants[len(a.Participants)-1], ShouldEqual, "new@mergington.edu")
			})
		})

		Convey("When adding an existing participant", func() {
			_, err := store.AddParticipant(ctx, "Chess Club", "michael@mergington.edu")

			Convey("Then it should fail with ErrAlreadySignedUp", func() {
				So(errors.Is(err, model.ErrAlreadySignedUp), ShouldBeTrue)
			})
		})

		Convey("When adding to an unknown activity", func() {
			_, err := store.AddParticipant(ctx, "Underwater Basket Weaving", "new@mergington.edu")

			Convey("Then it should fail with ErrActivityNotFound", func() {
				So(errors.Is(err, model.ErrActivityNotFound), ShouldBeTrue)
			})
		})

		Convey("When removing a participant", func() {
			a, err := store.RemoveParticipant(ctx, "Chess Club", "michael@mergington.edu")

			Convey("Then the roster should keep the remaining order", func() {
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{"daniel@mergington.edu"})
			})
		})

		Convey("When removing a non-member", func() {
			_, err := store.RemoveParticipant(ctx, "Chess Club", "ghost@mergington.edu")

			Convey("Then it should fail with ErrNotRegistered", func() {
				So(errors.Is(err, model.ErrNotRegistered), ShouldBeTrue)
			})
		})

		Convey("When removing from an unknown activity", func() {
			_, err := store.RemoveParticipant(ctx, "Nope", "michael@mergington.edu")

			Convey("Then it should fail with ErrActivityNotFound", func() {
				So(errors.Is(err, model.ErrActivityNotFound), ShouldBeTrue)
			})
		})

		Convey("When mutating a listed activity", func() {
			all, err := store.List(ctx)
			So(err, ShouldBeNil)
			chess := all["Chess Club"]
			chess.Participants[0] = "mutated@mergington.edu"

			Convey("Then the store should be unchanged", func() {
				again, err := store.Get(ctx, "Chess Club")
				So(err, ShouldBeNil)
				So(again.Participants[0], ShouldEqual, "michael@mergington.edu")
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.AddParticipant(cctx, "Chess Club", "late@mergington.edu")

			Convey("Then the operation should fail without mutating", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				a, _ := store.Get(ctx, "Chess Club")
				So(a.HasParticipant("late@mergington.edu"), ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryStoreCapacity(t *testing.T) {
	Convey("Given a store with capacity two", t, func() {
		ctx := context.Background()
		seed := map[string]model.Activity{"Duet": {MaxParticipants: 2, Participants: []string{"a@mergington.edu"}}}

		Convey("When capacity is enforced", func() {
			store, err := NewInMemoryStore(ctx, WithSeed(seed), WithCapacityEnforcement(true))
			So(err, ShouldBeNil)
			_, err = store.AddParticipant(ctx, "Duet", "b@mergington.edu")
			So(err, ShouldBeNil)
			_, err = store.AddParticipant(ctx, "Duet", "c@mergington.edu")

			Convey("Then the third signup should fail with ErrActivityFull", func() {
				So(errors.Is(err, model.ErrActivityFull), ShouldBeTrue)
			})
		})

		Convey("When capacity is not enforced", func() {
			store, err := NewInMemoryStore(ctx, WithSeed(seed))
			So(err, ShouldBeNil)
			_, err = store.AddParticipant(ctx, "Duet", "b@mergington.edu")
			So(err, ShouldBeNil)
			a, err := store.AddParticipant(ctx, "Duet", "c@mergington.edu")

			Convey("Then the roster may exceed max_participants", func() {
				So(err, ShouldBeNil)
				So(len(a.Participants), ShouldEqual, 3)
			})
		})
	})
}

func TestInMemoryStoreConcurrentSignups(t *testing.T) {
	Convey("Given many concurrent signups to one activity", t, func() {
		ctx := context.Background()
		store, err := NewInMemoryStore(ctx)
		So(err, ShouldBeNil)
		before, _ := store.Get(ctx, "Gym Class")

		const n = 100
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = store.AddParticipant(ctx, "Gym Class", fmt.Sprintf("student%d@mergington.edu", i))
			}(i)
		}
		wg.Wait()

		Convey("Then every signup should be recorded exactly once", func() {
			after, err := store.Get(ctx, "Gym Class")
			So(err, ShouldBeNil)
			So(len(after.Participants), ShouldEqual, len(before.Participants)+n)
		})
	})
}
