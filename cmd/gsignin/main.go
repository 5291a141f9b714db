package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	goSignIn "github.com/MrEthical07/goSignIn"
	"github.com/MrEthical07/goSignIn/metrics/export/prometheus"
	"github.com/MrEthical07/goSignIn/middleware"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const usage = `usage: gsignin [flags] <command> [argument]

commands:
  signin            open the browser and complete sign-in from the pasted redirect URL
  redirect <url>    complete sign-in from a redirect URL handed over by the OS
  token             print a valid access token, refreshing when expired
  refresh           force a token refresh
  profile           fetch and print the signed-in user's profile
  call <url>        GET a Google API URL with the access token and print the body
  status            print the persisted sign-in state
  signout           forget the token set
  lint              report risky configuration
  metrics           print this process's metrics in Prometheus text format

configuration is read from GOSIGNIN_* environment variables; flags override it.
`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var (
		clientID  = flag.String("client-id", "", "OAuth client id; overrides GOSIGNIN_CLIENT_ID")
		storeKind = flag.String("store", "", "token store: memory, redis or sqlite; overrides GOSIGNIN_STORE")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty with -store=redis, REDIS_ADDR env or miniredis is used")
		dbPath    = flag.String("db", "", "sqlite file path; overrides GOSIGNIN_SQLITE_PATH")
		scopes    = flag.String("scopes", "", "comma separated extra scopes")
		audit     = flag.Bool("audit", false, "write audit events to stderr as JSON lines")
		noBrowser = flag.Bool("no-browser", false, "print the authorization URL instead of opening a browser")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall command deadline")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg, err := goSignIn.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if *clientID != "" {
		cfg.ClientID = *clientID
	}
	if *storeKind != "" {
		cfg.Store.Kind = goSignIn.StoreKind(strings.ToLower(*storeKind))
	}
	if *dbPath != "" {
		cfg.Store.SQLitePath = *dbPath
	}
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.Scopes.Custom = append(cfg.Scopes.Custom, s)
		}
	}
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Audit.Enabled = *audit

	if flag.Arg(0) == "lint" {
		return runLint(cfg)
	}

	b := goSignIn.New().WithConfig(cfg)
	if *audit {
		b.WithAuditSink(goSignIn.NewJSONWriterSink(os.Stderr))
	}

	if *noBrowser {
		b.WithRedirectOpener(goSignIn.OpenerFunc(func(_ context.Context, u *url.URL) error {
			fmt.Printf("visit:\n  %s\n", u)
			return nil
		}))
	}

	if cfg.Store.Kind == goSignIn.StoreRedis {
		client, cleanup, err := redisClient(*redisAddr, cfg.Store.RedisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis: %v\n", err)
			return 1
		}
		defer cleanup()
		b.WithRedis(client)
	}

	results := make(chan goSignIn.SignInResult, 1)
	b.WithListener(goSignIn.ListenerFunc(func(_ context.Context, r goSignIn.SignInResult) {
		select {
		case results <- r:
		default:
		}
	}))

	engine, err := b.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, *timeout)

	code := run(ctx, engine, results, flag.Arg(0), flag.Arg(1))

	cancel()
	stop()
	if err := engine.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
	return code
}

func run(ctx context.Context, engine *goSignIn.Engine, results <-chan goSignIn.SignInResult, command, arg string) int {
	switch command {
	case "signin":
		if err := engine.SignIn(ctx); err != nil {
			return fail("sign-in", err)
		}
		fmt.Print("paste the redirect URL: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fail("read redirect", err)
		}
		return completeRedirect(ctx, engine, results, strings.TrimSpace(line))
	case "redirect":
		return completeRedirect(ctx, engine, results, arg)
	case "token":
		accessToken, err := engine.AccessToken(ctx)
		if err != nil {
			return fail("token", err)
		}
		fmt.Println(accessToken)
	case "refresh":
		auth, err := engine.Refresh(ctx)
		if err != nil {
			return fail("refresh", err)
		}
		fmt.Printf("refreshed, expires %s\n", auth.ExpiresAt.Format(time.RFC3339))
	case "profile":
		user, err := engine.Profile(ctx)
		if err != nil {
			return fail("profile", err)
		}
		printUser(user)
	case "call":
		return call(ctx, engine, arg)
	case "status":
		printStatus(engine)
	case "signout":
		if !engine.SignOut(ctx) {
			fmt.Fprintln(os.Stderr, "signed out in memory; the token store could not be cleared")
			return 1
		}
		fmt.Println("signed out")
	case "metrics":
		fmt.Print(prometheus.NewPrometheusExporter(engine).Render())
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	return 0
}

func completeRedirect(ctx context.Context, engine *goSignIn.Engine, results <-chan goSignIn.SignInResult, raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return fail("parse redirect", err)
	}
	if !engine.HandleRedirect(ctx, u) {
		fmt.Fprintf(os.Stderr, "not a redirect for this client (expected %s://...?code=...)\n", engine.RedirectScheme())
		return 1
	}

	select {
	case r := <-results:
		if r.Err != nil {
			if r.Auth != nil {
				fmt.Fprintf(os.Stderr, "signed in, but the profile fetch failed: %v\n", r.Err)
				return 1
			}
			return fail("sign-in", r.Err)
		}
		fmt.Println("signed in")
		printUser(r.User)
		return 0
	case <-ctx.Done():
		return fail("sign-in", ctx.Err())
	}
}

func call(ctx context.Context, engine *goSignIn.Engine, target string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail("call", err)
	}
	resp, err := middleware.Client(engine, nil).Do(req)
	if err != nil {
		return fail("call", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		return fail("call", err)
	}
	fmt.Println()
	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "call: server returned %d\n", resp.StatusCode)
		return 1
	}
	return 0
}

func redisClient(flagAddr, cfgAddr string) (redis.UniversalClient, func(), error) {
	addr := flagAddr
	if addr == "" {
		addr = cfgAddr
	}
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Fprintf(os.Stderr, "using miniredis at %s; state is lost on exit\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	return client, func() { _ = client.Close() }, nil
}

func runLint(cfg goSignIn.Config) int {
	res := cfg.Lint()
	if len(res) == 0 {
		fmt.Println("no findings")
		return 0
	}
	for _, w := range res {
		fmt.Printf("%-5s %-28s %s\n", w.Severity, w.Code, w.Message)
	}
	if res.AsError(goSignIn.LintHigh) != nil {
		return 1
	}
	return 0
}

func printStatus(engine *goSignIn.Engine) {
	fmt.Printf("client id:  %s\n", engine.ClientID())
	fmt.Printf("redirect:   %s://\n", engine.RedirectScheme())
	fmt.Printf("scopes:     %s\n", strings.Join(engine.Scopes(), " "))

	auth := engine.Auth()
	if auth == nil {
		fmt.Println("signed in:  no")
	} else {
		fmt.Println("signed in:  yes")
		fmt.Printf("expires:    %s\n", auth.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("refresh:    %t\n", auth.RefreshToken != "")
		fmt.Printf("granted:    %s\n", auth.Scope)
		if claims, err := engine.IDClaims(); err == nil {
			fmt.Printf("id token:   sub=%s\n", claims.Subject)
		}
	}
	if user := engine.User(); user != nil {
		printUser(user)
	}
}

func printUser(user *goSignIn.User) {
	if user == nil {
		return
	}
	fmt.Printf("user:       %s <%s>\n", user.Name(), user.Email)
	fmt.Printf("id:         %s\n", user.ID)
}

func fail(op string, err error) int {
	var httpErr *goSignIn.HTTPError
	if errors.As(err, &httpErr) {
		fmt.Fprintf(os.Stderr, "%s: server returned %d\n", op, httpErr.StatusCode)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	return 1
}
