package scheme

import (
	"fmt"

	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
)

// variant adapts a concrete proof system to the Scheme interface.
type variant[K Key, P Proof, VK, PR any] struct {
	id            ID
	name          string
	newKey        func() K
	newProof      func() P
	decodeKey     func([]byte) (K, error)
	decodeProof   func([]byte) (P, error)
	assembleKey   func(K) (VK, error)
	assembleProof func(P) (PR, error)
	verify        func(VK, PR) (bool, error)
}

type verifier[K Key, P Proof, VK, PR any] struct {
	v  *variant[K, P, VK, PR]
	vk VK
}

func (v *variant[K, P, VK, PR]) ID() ID       { return v.id }
func (v *variant[K, P, VK, PR]) Name() string { return v.name }
func (v *variant[K, P, VK, PR]) NewKey() Key  { return v.newKey() }
func (v *variant[K, P, VK, PR]) NewProof() Proof {
	return v.newProof()
}

func (v *variant[K, P, VK, PR]) DecodeKey(msg []byte) (Key, error) {
	k, err := v.decodeKey(msg)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (v *variant[K, P, VK, PR]) DecodeProof(msg []byte) (Proof, error) {
	p, err := v.decodeProof(msg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (v *variant[K, P, VK, PR]) Assemble(k Key) (Verifier, error) {
	key, ok := k.(K)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a %s key", zkp.ErrKeyFormat, k, v.name)
	}
	vk, err := v.assembleKey(key)
	if err != nil {
		return nil, err
	}
	return &verifier[K, P, VK, PR]{v: v, vk: vk}, nil
}

func (v *verifier[K, P, VK, PR]) Verify(p Proof) (bool, error) {
	proof, ok := p.(P)
	if !ok {
		return false, fmt.Errorf("%w: %T is not a %s proof", zkp.ErrProofFormat, p, v.v.name)
	}
	assembled, err := v.v.assembleProof(proof)
	if err != nil {
		return false, err
	}
	return v.v.verify(v.vk, assembled)
}
