// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package test

import (
	"crypto/rand"
	"fmt"
	"sync"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/ssid"
)

// Group is the curve used throughout the tests.
var Group = curve.Secp256k1{}

// safePrimes are 1024 bit Blum safe primes; consecutive pairs form 2048 bit moduli.
var safePrimes = [...]string{
	"C35582B69CF8AE653FB10206293635146801CD6B10278771D29B75C4C12F5EA9A09C414D0F516C407355103DFB2675B66B154B2193C02CA8462D959A5D728754F9E83ABE6E964C938E46AF8D7D253C987BC2AE6F5FCB5D3CD982573A7FB969E48DE72574F159533871CFDA7B170138FC9CB300689F2EDFB0D62058A013B1DB27",
	"DB531C32024A262A0DF9603E48C79E863F9539A82B8619480289EC38C3664CC63E3AC2C04888827559FFDBCB735A8D2F1D24BAF910643CE819452D95CAFFB686E6110057985E93605DE89E33B99C34140EF362117F975A5056BFF14A51C9CD16A4961BE1F02C081C7AD8B2A5450858023A157AFA3C3441E8E00941F8D33ED6B7",
	"EDA3A5F3FACADB89AED1C2F002E619BEED273F9FC122D238CB39B3575D6A08A285D690182C0E53F57AC830FB6FF8201C766ADA5D3379B0ADB7EA5E90DD06A3A934325DF80A1B06E2BFE9AD2A50A14205E912DC5BBC82F86E759C546D0EC048CBEA8733B1B773FFD811BE701C4C0B709781C0018C6C9B9D02D5AE53F33E2B5DB3",
	"FD90167F42443623D284EA828FB13E374CBF73E16CC6755422B97640AB7FC77FDAF452B4F3A2E8472614EEE11CC8EAF48783CE2B4876A3BB72E9ACF248E86DAA5CE4D5A88E77352BCBA30A998CD8B0AD2414D43222E3BA56D82523E2073730F817695B34A4A26128D5E030A7307D3D04456DC512EBB8B53FDBD1DFC07662099B",
	"E6C7A4BB3C14749A1115C73B33A4F863138981155A5108DA742CE3FD9921ACEF41E4B0DBE4DD09A324068D2178B05E4A340818E05C6290049F48E63075ED829031B1216E087004B48D24653BB462750C2FEF6CE481185DFAEA36DF7BCB8D9945EA5A089AF19ABA30B878BC5CFB8A1BF5E1EB7021ADE196D841D32DEB877C7ABF",
	"FEE363A540F75257E10919218204480C40CFE10E8CA243B95F0BFBF43B199E3C943E056F3F3B23E2F57D108BD6E9CF04D681365B9EC9594CA14F7A5F92CE42BDB7E14D5C9BA98E88F9B867085F327AA0A5450E1E4EF46D192B2472E2DF4F51D623F6E1671E5E5F8854356EE686F9B54D559E8B938F8D647B044B066C3DA036CB",
	"D6807E46299FE7BBA7A8D637F903F20D6F54548D4D425401AE15D2F3B32C78BC6F85D437750A86661E18440E91EAD036878E17A4666EFCFF0EA187679859A161798EB027FDC1B61195C419A1475FAAE1FE37FE18C300D9878C9B9C165BF7DD54D19082AA71B21A429F05744C2B884FB9CE9F9A4619A657C70555DF1F55B9728B",
	"CCA124216801E2956EBB2CB9C2F886DF5D6EC6BB89E96A6E05A8577F5F3FEF93BCBEE87626020C341C4CE6549535C62F1F0D4F43F3BBCB694157BE53888D7B441804FCBBB12E4E32C188860051F04DB9425CF82C9786B1B690D8B9A62639D9E038EDE3A55C067E47DAD85EB28C5511D381B79ECCE81C2F58079407FB6498E08F",
	"E9362E563710BD5260E3817CCFD38C97DA12F8E6D6612843E9269108793F23384E7678B5F37F9CAE13A0A5764FAB4AB7D26B73CE2979F31BEF16E9E325BB081C60606667EC65CC7F50C3A00B7FBC87D6C0A0C91811A0730BC273D0CBA7ECC6B5A179124FF831365C033922BB3F094E0DE93B13F8A072B95FC3460AB85FF71FEB",
	"D30E5A84220413D722FB767302580A75D6948509B3CB7B25C6188D960E419AB0836851890D69467FC9D904D6BF090C5C0C29AE51844C3CFBDABEF1477EC9D7C9FB36B4261A4269610CA5461C1ECA1425268CB0B75BEB5D45A4984B17B05F52A3589C5176288724883F132CC4162DBEB9AE66CA912F46C9A2E244B31DE5AD0A57",
}

// PaillierKeys is the number of distinct fixed Paillier keys.
const PaillierKeys = len(safePrimes) / 2

var (
	paillierOnce [PaillierKeys]sync.Once
	paillierKeys [PaillierKeys]*paillier.SecretKey
)

// PaillierSecret returns the i-th fixed Paillier key, 0 ≤ i < PaillierKeys.
// Generating fresh safe primes takes too long for unit tests.
func PaillierSecret(i int) *paillier.SecretKey {
	if i < 0 || i >= PaillierKeys {
		panic(fmt.Sprintf("test: no Paillier fixture %d", i))
	}
	paillierOnce[i].Do(func() {
		p := mustHex(safePrimes[2*i])
		q := mustHex(safePrimes[2*i+1])
		paillierKeys[i] = paillier.NewSecretKeyFromPrimes(p, q)
	})
	return paillierKeys[i]
}

// Pedersen returns ring Pedersen parameters over the i-th Paillier modulus, with λ such that s = tˡ.
func Pedersen(i int) (*pedersen.Parameters, *BigInt.Nat) {
	seed := []byte(fmt.Sprintf("pedersen fixture %d", i))
	return PaillierSecret(i).GeneratePedersen(sample.NewSeededReader(seed))
}

func mustHex(s string) *BigInt.Nat {
	n, err := new(BigInt.Nat).SetHex(s)
	if err != nil {
		panic(err)
	}
	return n
}

// PartyIDs returns a sorted slice of n distinct IDs.
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("%c", 'a'+i))
	}
	return party.NewIDSlice(ids)
}

// SSID returns a session identifier for ids with random public shares.
// Party number i uses Paillier fixture i % PaillierKeys.
func SSID(ids party.IDSlice) *ssid.SSID {
	shares := make(map[party.ID]curve.Point, len(ids))
	paillierPublic := make(map[party.ID]*paillier.PublicKey, len(ids))
	pedersenPublic := make(map[party.ID]*pedersen.Parameters, len(ids))
	for i, id := range ids {
		_, shares[id] = sample.ScalarPointPair(rand.Reader, Group)
		paillierPublic[id] = PaillierSecret(i % PaillierKeys).PublicKey
		pedersenPublic[id], _ = Pedersen(i % PaillierKeys)
	}
	rid := make([]byte, ssid.BytesRID)
	rho := make([]byte, ssid.BytesRID)
	_, _ = rand.Read(rid)
	_, _ = rand.Read(rho)
	s, err := ssid.New(ssid.Params{
		UID:       []byte("test session"),
		RID:       rid,
		Rho:       rho,
		Group:     Group,
		PartyIDs:  ids,
		Threshold: len(ids) - 1,
		Shares:    shares,
		Paillier:  paillierPublic,
		Pedersen:  pedersenPublic,
	})
	if err != nil {
		panic(err)
	}
	return s
}
