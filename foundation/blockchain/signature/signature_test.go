package signature_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// testKey is a fixed private key so the tests are deterministic.
const testKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

type record struct {
	Sender    string `json:"sender_public_key"`
	Recipient string `json:"recipient_public_key"`
	Amount    uint64 `json:"amount"`
}

func Test_SignVerify(t *testing.T) {
	t.Log("Given the need to sign and verify transactions.")
	{
		t.Logf("\tTest 0:\tWhen handling a well formed key pair.")
		{
			privateKey, err := crypto.HexToECDSA(testKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the private key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the private key.", success)

			publicKey := signature.PublicKeyString(privateKey)
			value := record{Sender: publicKey, Recipient: "bob", Amount: 42}

			sig, err := signature.Sign(value, privateKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the value: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to sign the value.", success)

			if !signature.Verify(publicKey, sig, value) {
				t.Errorf("\t%s\tTest 0:\tShould be able to verify the signature.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould be able to verify the signature.", success)
			}

			other := value
			other.Amount = 43
			if signature.Verify(publicKey, sig, other) {
				t.Errorf("\t%s\tTest 0:\tShould not verify a signature over different data.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould not verify a signature over different data.", success)
			}

			otherKey, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a second key: %v", failed, err)
			}
			if signature.Verify(signature.PublicKeyString(otherKey), sig, value) {
				t.Errorf("\t%s\tTest 0:\tShould not verify against a different public key.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould not verify against a different public key.", success)
			}
		}
	}
}

func Test_VerifyFailsClosed(t *testing.T) {
	privateKey, err := crypto.HexToECDSA(testKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	value := record{Sender: "x", Recipient: "y", Amount: 1}
	sig, err := signature.Sign(value, privateKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the value: %v", failed, err)
	}
	publicKey := signature.PublicKeyString(privateKey)

	tt := []struct {
		name string
		pub  string
		sig  string
	}{
		{"non hex public key", "The Blockchain", sig},
		{"truncated public key", publicKey[:16], sig},
		{"non hex signature", publicKey, "zzzz"},
		{"truncated signature", publicKey, sig[:30]},
		{"empty signature", publicKey, ""},
		{"empty public key", "", sig},
	}

	t.Log("Given the need to resolve malformed inputs to false, never a fault.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				if signature.Verify(tst.pub, tst.sig, value) {
					t.Errorf("\t%s\tTest %d:\tShould report the signature invalid.", failed, testID)
				} else {
					t.Logf("\t%s\tTest %d:\tShould report the signature invalid.", success, testID)
				}
			}
		}
	}
}
