package dex

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"rebalanceScope/internal/model"
)

func TestDefaultRegistryTopicsMatchABI(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	descs := reg.Descriptors()
	if len(descs) != len(descriptorDefs) {
		t.Fatalf("expected %d descriptors, got %d", len(descriptorDefs), len(descs))
	}
	for _, desc := range descs {
		if desc.Topic != desc.event.ID {
			t.Fatalf("%s %s: topic %s != abi id %s", desc.Protocol, desc.Signature(), desc.Topic.Hex(), desc.event.ID.Hex())
		}
		if strings.Contains(desc.Signature(), "indexed") {
			t.Fatalf("signature must only carry types: %s", desc.Signature())
		}
		got, ok := reg.Resolve(desc.Topic)
		if !ok || got.Protocol != desc.Protocol || got.Name != desc.Name {
			t.Fatalf("resolve mismatch for %s", desc.Signature())
		}
	}
}

func TestDefaultRegistryKnownTopics(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	cases := []struct {
		topic    string
		protocol model.Protocol
		kind     model.ActionKind
	}{
		{"0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67", model.ProtocolUniswapV3, model.ActionSwap},
		{"0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde", model.ProtocolUniswapV3, model.ActionMint},
		{"0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c", model.ProtocolUniswapV3, model.ActionBurn},
		{"0x70935338e69775456a85ddef226c395fb668b63fa0115f5f20610b388e6ca9c0", model.ProtocolUniswapV3, model.ActionCollect},
		{"0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f", model.ProtocolUniswapV3, model.ActionAddLiquidity},
		{"0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4", model.ProtocolUniswapV3, model.ActionRemoveLiquidity},
		{"0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822", model.ProtocolUniswapV2, model.ActionSwap},
		{"0x2b627736bca15cd5381dcf80b0bf11fd197d01a037c52b927a881a10fb73ba61", model.ProtocolAaveV3, model.ActionSupply},
	}
	for _, tc := range cases {
		desc, ok := reg.ResolveHex(tc.topic)
		if !ok {
			t.Fatalf("topic %s not registered", tc.topic)
		}
		if desc.Protocol != tc.protocol || desc.Kind != tc.kind {
			t.Fatalf("topic %s resolved to %s/%s", tc.topic, desc.Protocol, desc.Kind)
		}
	}

	if _, ok := reg.Resolve(common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")); ok {
		t.Fatalf("erc20 Transfer must not be registered")
	}
	if _, ok := reg.ResolveHex("0x1234"); ok {
		t.Fatalf("short topic must not resolve")
	}
}

func TestSharedNamesDoNotCollide(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	withdraws := make(map[common.Hash]model.Protocol)
	for _, desc := range reg.Descriptors() {
		if desc.Name == "Withdraw" {
			withdraws[desc.Topic] = desc.Protocol
		}
	}
	if len(withdraws) != 2 {
		t.Fatalf("expected two distinct Withdraw topics, got %v", withdraws)
	}
}

func TestRegistryRejectsCollision(t *testing.T) {
	defs := []descriptorDef{
		{model.ProtocolUniswapV3, model.ActionMint, abiV3Pool, "Mint"},
		{model.ProtocolUniswapV3, model.ActionMint, abiV3Pool, "Mint"},
	}
	if _, err := newRegistry(defs); err == nil {
		t.Fatalf("expected collision error")
	}
}

func TestLendingLayoutsInRange(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	for _, desc := range reg.Descriptors() {
		if !desc.Kind.IsLending() {
			continue
		}
		layout, ok := lendingLayouts[layoutKey{desc.Protocol, desc.Name}]
		if !ok {
			t.Fatalf("missing layout for %s %s", desc.Protocol, desc.Name)
		}
		if layout.amount >= len(desc.Params) || !strings.HasPrefix(desc.Params[layout.amount].Type, "uint") {
			t.Fatalf("%s %s: amount index %d invalid", desc.Protocol, desc.Name, layout.amount)
		}
		if layout.asset >= 0 && desc.Params[layout.asset].Type != "address" {
			t.Fatalf("%s %s: asset index %d invalid", desc.Protocol, desc.Name, layout.asset)
		}
	}
}
