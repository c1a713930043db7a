// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package params

const (
	SecParam  = 256
	SecBytes  = SecParam / 8
	StatParam = 80

	L                 = 1 * SecParam     // = 256
	LPrime            = 5 * SecParam     // = 1280
	Epsilon           = 2 * SecParam     // = 512
	LPlusEpsilon      = L + Epsilon      // = 768
	LPrimePlusEpsilon = LPrime + Epsilon // 1792

	BitsIntModN  = 8 * SecParam    // = 2048
	BytesIntModN = BitsIntModN / 8 // = 256

	BitsBlumPrime = 4 * SecParam      // = 1024
	BitsPaillier  = 2 * BitsBlumPrime // = 2048

	BytesPaillier   = BitsPaillier / 8  // = 256
	BytesCiphertext = 2 * BytesPaillier // = 512

	BytesScalar = 32
	BytesPoint  = 33

	// HiddenOrderIterations is the number of single bit repetitions of the
	// discrete log proof in the group of unknown order Z*_N.
	HiddenOrderIterations = 128

	// BytesIndex is the width of an owner index in a packed set.
	BytesIndex = 2

	// Magnitudes of signed proof responses, without the sign byte.
	BytesIntLEps      = LPlusEpsilon / 8                      // = 96
	BytesIntLPrimeEps = LPrimePlusEpsilon / 8                 // = 224
	BytesIntLEpsN     = (LPlusEpsilon + BitsIntModN) / 8      // = 352
	BytesIntLPrimeN   = (LPrimePlusEpsilon + BitsIntModN) / 8 // = 480
)
