package rit

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	mrand "math/rand"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"

	"github.com/weedbox/pokerroom/card"
)

var suite suites.Suite = suites.MustFind("Ed25519")

var (
	ErrInvalidRunCount    = errors.New("rit: run count out of range")
	ErrNotEnoughCards     = errors.New("rit: not enough undealt cards")
	ErrCommitmentMismatch = errors.New("rit: revealed entropy does not match commitment")
	ErrProofInvalid       = errors.New("rit: reveal proof does not verify")
	ErrBoardMismatch      = errors.New("rit: boards do not re-derive from seed")
)

// Commitment binds the dealer to its entropy before any player contribution
// is known. Only the digest leaves the process before the reveal.
type Commitment struct {
	Digest  []byte `json:"digest"`
	entropy []byte
}

// Record is the persisted, externally verifiable account of one multi-run
// deal: any party holding it can recompute the boards from the committed
// entropy and check the reveal proof against the published key.
type Record struct {
	Runs          int           `json:"runs"`
	Commitment    []byte        `json:"commitment"`
	ServerEntropy []byte        `json:"server_entropy"`
	PlayerEntropy []byte        `json:"player_entropy"`
	Seed          []byte        `json:"seed"`
	Proof         []byte        `json:"proof"`
	PublicKey     []byte        `json:"public_key"`
	Boards        [][]card.Card `json:"boards"`
}

// Dealer holds the long-lived signing key whose public half is published to
// players for proof verification.
type Dealer struct {
	private kyber.Scalar
	public  kyber.Point
}

func NewDealer() *Dealer {
	private := suite.Scalar().Pick(suite.RandomStream())
	public := suite.Point().Mul(private, nil)
	return &Dealer{private: private, public: public}
}

func (d *Dealer) PublicKey() ([]byte, error) {
	return d.public.MarshalBinary()
}

// Commit draws fresh server entropy and publishes its digest.
func (d *Dealer) Commit() (*Commitment, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return nil, err
	}
	digest := sha256.Sum256(entropy)
	return &Commitment{Digest: digest[:], entropy: entropy}, nil
}

// Deal derives runs independent board completions from the committed entropy
// mixed with the player contribution. Each run draws boardSize cards from a
// fresh shuffle of the undealt portion, without replacement within the run.
func (d *Dealer) Deal(commitment *Commitment, playerEntropy []byte, undealt []card.Card, boardSize, runs int) (*Record, error) {
	if runs < 1 {
		return nil, ErrInvalidRunCount
	}
	if boardSize > len(undealt) {
		return nil, ErrNotEnoughCards
	}

	seed := deriveSeed(commitment.entropy, playerEntropy)
	proof, err := schnorr.Sign(suite, d.private, seed)
	if err != nil {
		return nil, err
	}
	publicKey, err := d.PublicKey()
	if err != nil {
		return nil, err
	}

	return &Record{
		Runs:          runs,
		Commitment:    commitment.Digest,
		ServerEntropy: commitment.entropy,
		PlayerEntropy: playerEntropy,
		Seed:          seed,
		Proof:         proof,
		PublicKey:     publicKey,
		Boards:        deriveBoards(seed, undealt, boardSize, runs),
	}, nil
}

// Verify recomputes everything in the record: the entropy commitment, the
// seed, the reveal proof and the boards themselves.
func Verify(record *Record, undealt []card.Card, boardSize int) error {
	digest := sha256.Sum256(record.ServerEntropy)
	if !bytes.Equal(digest[:], record.Commitment) {
		return ErrCommitmentMismatch
	}
	if !bytes.Equal(record.Seed, deriveSeed(record.ServerEntropy, record.PlayerEntropy)) {
		return ErrCommitmentMismatch
	}

	public := suite.Point()
	if err := public.UnmarshalBinary(record.PublicKey); err != nil {
		return ErrProofInvalid
	}
	if err := schnorr.Verify(suite, public, record.Seed, record.Proof); err != nil {
		return ErrProofInvalid
	}

	boards := deriveBoards(record.Seed, undealt, boardSize, record.Runs)
	if len(boards) != len(record.Boards) {
		return ErrBoardMismatch
	}
	for i := range boards {
		if len(boards[i]) != len(record.Boards[i]) {
			return ErrBoardMismatch
		}
		for j := range boards[i] {
			if boards[i][j] != record.Boards[i][j] {
				return ErrBoardMismatch
			}
		}
	}
	return nil
}

func deriveSeed(serverEntropy, playerEntropy []byte) []byte {
	h := sha256.New()
	h.Write(serverEntropy)
	h.Write(playerEntropy)
	return h.Sum(nil)
}

// deriveBoards is fully deterministic in the seed so any verifier can
// recompute the boards.
func deriveBoards(seed []byte, undealt []card.Card, boardSize, runs int) [][]card.Card {
	boards := make([][]card.Card, 0, runs)
	for run := 0; run < runs; run++ {
		h := sha256.New()
		h.Write(seed)
		var runTag [8]byte
		binary.BigEndian.PutUint64(runTag[:], uint64(run))
		h.Write(runTag[:])
		runSeed := h.Sum(nil)

		deck := card.NewDeckFrom(undealt)
		deck.ShuffleWithRand(mrand.New(mrand.NewSource(int64(binary.BigEndian.Uint64(runSeed[:8])))))
		board, err := deck.Draw(boardSize)
		if err != nil {
			// boardSize was validated against the undealt count
			panic(err)
		}
		boards = append(boards, board)
	}
	return boards
}
