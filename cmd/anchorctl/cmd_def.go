package main

import (
	cli "github.com/urfave/cli"
)

var keyFlag = cli.StringFlag{
	Name:     "key, k",
	EnvVar:   "ANCHOR_KEY",
	Usage:    "file holding the hex Ed25519 seed to sign with",
	Required: true,
}

var commitmentFlags = []cli.Flag{
	cli.StringFlag{
		Name:     "secret-hash",
		Usage:    "hex hash of the holder secret",
		Required: true,
	},
	cli.StringFlag{
		Name:     "subject",
		Usage:    "base58 key of the credential subject",
		Required: true,
	},
	cli.StringFlag{
		Name:     "issuer",
		Usage:    "base58 key of the issuer",
		Required: true,
	},
	cli.BoolTFlag{
		Name:  "flag",
		Usage: "asserted flag (default true, pass --flag=false to clear)",
	},
	cli.Uint64Flag{
		Name:  "issued-at",
		Usage: "unix seconds the credential was issued at",
	},
}

var cmds = cli.Commands{
	{
		Name:    "keygen",
		Usage:   "generate an Ed25519 key pair",
		Aliases: []string{"kg"},
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "out, o",
				Usage: "write the seed to this file instead of printing it",
			},
		},
		Action: keygen,
	},
	{
		Name:      "did",
		Usage:     "print the DID of a public key or key file",
		ArgsUsage: "<base58 key>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "key, k",
				Usage: "derive the DID from this seed file instead",
			},
		},
		Action: printDID,
	},
	{
		Name:      "hash",
		Usage:     "hash a DID document",
		ArgsUsage: "<document file>",
		Action:    hashDocument,
	},
	{
		Name:  "sign",
		Usage: "sign a registry operation",
		Subcommands: cli.Commands{
			{
				Name:      "register",
				Usage:     "authorize anchoring a document hash",
				ArgsUsage: "<document hash>",
				Flags:     []cli.Flag{keyFlag},
				Action:    signRegister,
			},
			{
				Name:      "update",
				Usage:     "authorize replacing the document with a new hash",
				ArgsUsage: "<new document hash>",
				Flags:     []cli.Flag{keyFlag},
				Action:    signUpdate,
			},
			{
				Name:   "revoke",
				Usage:  "authorize revoking the signer's own record",
				Flags:  []cli.Flag{keyFlag},
				Action: signRevoke,
			},
		},
	},
	{
		Name:  "token",
		Usage: "issue a bearer token for a sender",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:     "secret",
				EnvVar:   "JWT_SIGNING_KEY",
				Usage:    "server JWT signing key",
				Required: true,
			},
			cli.StringFlag{
				Name:     "sender",
				Usage:    "base58 key the token acts as",
				Required: true,
			},
			cli.DurationFlag{
				Name:  "ttl",
				Value: defaultTokenTTL,
				Usage: "token lifetime",
			},
		},
		Action: issueToken,
	},
	{
		Name:  "commitment",
		Usage: "build a legacy hash-commitment submission",
		Subcommands: cli.Commands{
			{
				Name:  "age",
				Usage: "age commitment",
				Flags: append([]cli.Flag{
					cli.UintFlag{
						Name:  "min-age",
						Value: 18,
						Usage: "attested minimum age",
					},
				}, commitmentFlags...),
				Action: ageCommitment,
			},
			{
				Name:  "kyc",
				Usage: "KYC commitment",
				Flags: append([]cli.Flag{
					cli.UintFlag{
						Name:  "level",
						Value: 1,
						Usage: "attested KYC level",
					},
					cli.UintFlag{
						Name:  "jurisdiction",
						Usage: "ISO 3166-1 numeric country code",
					},
				}, commitmentFlags...),
				Action: kycCommitment,
			},
		},
	},
	{
		Name:  "proof",
		Usage: "produce an age proof signed by a proving-service key",
		Flags: []cli.Flag{
			keyFlag,
			cli.StringFlag{
				Name:     "subject",
				Usage:    "base58 key of the credential subject",
				Required: true,
			},
			cli.StringFlag{
				Name:     "issuer",
				Usage:    "base58 key of the issuer",
				Required: true,
			},
			cli.UintFlag{
				Name:  "min-age",
				Value: 18,
				Usage: "minimum age the proof asserts",
			},
			cli.Uint64Flag{
				Name:  "timestamp",
				Usage: "unix seconds the proof is dated (default now)",
			},
		},
		Action: ageProof,
	},
}
