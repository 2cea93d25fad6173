/*
Rpalserver starts the RPAL eval server and begins listening for HTTP
requests.

Usage:

	rpalserver [flags]

By default, it listens on localhost:8080. This can be changed with the
--listen/-l flag or the RPAL_LISTEN_ADDRESS environment variable.

If a JWT token secret is not given, one is generated at startup. As a
consequence, all tokens become invalid as soon as the server shuts down;
this is suitable for testing only. Give one via -s/--secret or
RPAL_TOKEN_SECRET for any deployment that needs to survive a restart.

The flags are:

	-v, --version
		Give the current version of rpalserver and exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If given, it is
		padded by repetition up to 32 bytes and truncated at 64.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of "inmem"
		or "sqlite". sqlite needs the path to its data directory, e.g.
		sqlite:path/to/db_dir. Defaults to inmem.
*/
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/dekarrin/rpal/internal/version"
	"github.com/dekarrin/rpal/server"
	"github.com/dekarrin/rpal/server/accounts"
	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/dao/inmem"
	"github.com/dekarrin/rpal/server/dao/sqlite"
	"github.com/dekarrin/rpal/server/serr"
)

const (
	EnvListen = "RPAL_LISTEN_ADDRESS"
	EnvSecret = "RPAL_TOKEN_SECRET"
	EnvDB     = "RPAL_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of rpalserver and exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}

	store, err := openStore(dbConnStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	tokSecret := resolveSecret()

	api := server.API{
		Accounts:    accounts.Service{DB: store},
		Secret:      tokSecret,
		UnauthDelay: time.Second,
	}

	// immediately create the admin user so there is someone to log in as.
	_, err = api.Accounts.CreateUser(context.Background(), "admin", "password", dao.Admin)
	if err != nil && !errors.Is(err, serr.ErrAlreadyExists) {
		log.Printf("ERROR could not create initial admin user: %v", err)
		os.Exit(2)
	}
	if !errors.Is(err, serr.ErrAlreadyExists) {
		log.Printf("INFO  Added initial admin user with password 'password'...")
	}

	log.Printf("INFO  Starting rpal eval server %s on %s...", version.Current, listenAddr)
	if err := http.ListenAndServe(listenAddr, api.Router()); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

func openStore(connStr string) (dao.Store, error) {
	if connStr == "" {
		return inmem.NewDatastore(), nil
	}

	parts := strings.SplitN(connStr, ":", 2)
	driver := strings.ToLower(parts[0])

	switch driver {
	case "inmem":
		return inmem.NewDatastore(), nil
	case "sqlite":
		if len(parts) != 2 || parts[1] == "" {
			return nil, fmt.Errorf("sqlite DB string must be in form sqlite:path/to/db_dir")
		}
		if err := os.MkdirAll(parts[1], 0770); err != nil {
			return nil, fmt.Errorf("could not build data directory: %w", err)
		}
		return sqlite.NewDatastore(parts[1])
	default:
		return nil, fmt.Errorf("unsupported DB engine: %q", driver)
	}
}

func resolveSecret() []byte {
	secStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secStr = *flagSecret
	}

	if secStr == "" {
		secret := make([]byte, 64)
		if _, err := rand.Read(secret); err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
		return secret
	}

	secret := []byte(secStr)
	for len(secret) < 32 {
		doubled := make([]byte, len(secret)*2)
		copy(doubled, secret)
		copy(doubled[len(secret):], secret)
		secret = doubled
	}
	if len(secret) > 64 {
		secret = secret[:64]
	}
	return secret
}
