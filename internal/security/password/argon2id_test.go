package password

import (
	"strings"
	"testing"
)

// Parámetros chicos: los tests no necesitan 64MiB por hash.
var fast = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(fast, "s3creta!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected PHC prefix: %s", phc)
	}
	if !Verify("s3creta!", phc) {
		t.Fatal("correct password must verify")
	}
	if Verify("otra", phc) {
		t.Fatal("wrong password must not verify")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, _ := Hash(fast, "mismo")
	b, _ := Hash(fast, "mismo")
	if a == b {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(fast, ""); err == nil {
		t.Fatal("empty password must be rejected")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$salt",             // faltan partes
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$ZGs",         // algoritmo ajeno
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGs",       // versión ajena
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$ZGs",          // m inválido
		"$argon2id$v=19$m=8192,t=1,p=1$!!notb64$ZGs",     // salt roto
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!notb64",  // dk roto
		"$argon2id$v=19$m=8192,t=1,p=1,x=9$c2FsdA$ZGs",   // parámetro ajeno
	}
	for _, phc := range cases {
		if Verify("whatever", phc) {
			t.Errorf("Verify must be false for %q", phc)
		}
	}
}
