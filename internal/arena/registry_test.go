package arena

import "testing"

func TestRegisterRejectsDuplicateName(t *testing.T) {
	a := testArena()
	s1 := &Session{arena: a}
	s2 := &Session{arena: a}

	if ok := a.register("alice", s1); !ok {
		t.Fatalf("first register should succeed")
	}
	if ok := a.register("alice", s2); ok {
		t.Fatalf("second register with the same name should fail")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	a := testArena()
	s := &Session{arena: a, name: "bob"}
	a.register("bob", s)
	a.markInGame(s)

	a.unregister(s)
	a.unregister(s) // must not panic or misbehave on a second call

	if _, taken := a.sessions["bob"]; taken {
		t.Fatalf("expected bob to be removed from the registry")
	}
	if _, inGame := a.inGame[s]; inGame {
		t.Fatalf("expected bob to be removed from the in-game set")
	}
}

func TestSnapshotInGameIsACopy(t *testing.T) {
	a := testArena()
	s := &Session{arena: a}
	a.markInGame(s)

	snap := a.snapshotInGame()
	a.markInGame(&Session{arena: a})

	if len(snap) != 1 {
		t.Fatalf("snapshot should not reflect later mutations, got len %d", len(snap))
	}
}
