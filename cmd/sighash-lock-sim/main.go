// Command sighash-lock-sim is operator tooling around the verifier: it
// builds a signed LockBytes for a JSON-described transaction ("sign") or
// runs lock.Verify against one and prints the resulting exit code
// ("verify"). It is not part of the on-chain script (spec §6 rules out a
// CLI for the verifier itself) — it is the development/inspection surface
// a repository like this one carries, the same role the pack's
// ark-network-ark client CLI plays for its wallet.
//
// Grounded on ark-network-ark/client/main.go's urfave/cli/v2 App/Command
// structure.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nervosnetwork/ckb-open-sighash-lock/lock"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sign"
)

var fixtureFlag = &cli.StringFlag{
	Name:     "fixture",
	Usage:    "path to a JSON transaction fixture (see fixture.go for the shape)",
	Required: true,
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "log the reference host's tx hash, script and witness loads as they run",
}

func newLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "build a LockBytes payload for a fixture's coverage list and private key",
		Flags: []cli.Flag{fixtureFlag, verboseFlag},
		Action: func(ctx *cli.Context) error {
			data, err := os.ReadFile(ctx.String("fixture"))
			if err != nil {
				return err
			}
			f, err := loadFixture(data)
			if err != nil {
				return err
			}
			host, priv, err := f.buildHost(newLogger(ctx.Bool("verbose")))
			if err != nil {
				return err
			}
			if priv == nil {
				return fmt.Errorf("fixture has no private_key to sign with")
			}
			ops, err := f.coverageOps()
			if err != nil {
				return err
			}
			lockBytes, err := sign.LockBytes(priv, host, ops)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"lock_bytes": hexBytes(lockBytes),
				"args":       hexBytes(func() []byte { a := sign.Args(priv); return a[:] }()),
			})
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "run lock.Verify against a fixture and print the exit code",
		Flags: []cli.Flag{fixtureFlag, verboseFlag},
		Action: func(ctx *cli.Context) error {
			data, err := os.ReadFile(ctx.String("fixture"))
			if err != nil {
				return err
			}
			f, err := loadFixture(data)
			if err != nil {
				return err
			}
			host, _, err := f.buildHost(newLogger(ctx.Bool("verbose")))
			if err != nil {
				return err
			}
			verr := lock.VerifyErr(host)
			code := lockerr.Exit(verr)
			out := map[string]interface{}{"exit_code": code}
			if verr != nil {
				out["error"] = verr.Error()
			}
			if err := printJSON(out); err != nil {
				return err
			}
			if code != 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "sighash-lock-sim"
	app.Usage = "sign/verify fixtures against the open sighash lock"
	app.Commands = []*cli.Command{signCommand(), verifyCommand()}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
