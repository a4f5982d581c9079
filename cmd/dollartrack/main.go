// Command dollartrack is the command-line client for the dollar serial
// number tracker. Every invocation performs one task against the configured
// server (or locally, for invitations and scans) and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dollartrack/internal/billscan"
	"dollartrack/internal/client"
	"dollartrack/internal/config"
	"dollartrack/internal/models"
	"dollartrack/internal/protocol"
	"dollartrack/internal/valuation"
	"dollartrack/pkg/logging"
)

const usage = `usage: dollartrack <command> [flags]

commands:
  register   create an account
  add        record a bill
  search     search the shared collection
  mine       list your bills
  update     update a bill you recorded
  estimate   look up a bill's market value
  scan       extract a serial number from a bill photo
  invite     create an invitation to this installation's server
  accept     save an invitation token
`

func main() {
	logging.Setup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Open(os.Getenv("DOLLARTRACK_CONFIG_DIR"))
	if err != nil {
		fatal(err)
	}
	serverCfg, err := cfg.ServerConfig()
	if err != nil {
		fatal(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "register":
		runRegister(serverCfg, args)
	case "add":
		runAdd(serverCfg, args)
	case "search":
		runSearch(serverCfg, args)
	case "mine":
		runMine(serverCfg, args)
	case "update":
		runUpdate(serverCfg, args)
	case "estimate":
		runEstimate(args)
	case "scan":
		runScan(args)
	case "invite":
		runInvite(serverCfg)
	case "accept":
		runAccept(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fatal(err error) {
	slog.Error("Command failed", "error", err)
	os.Exit(1)
}

// credentialFlags registers the login flags shared by authenticated commands.
func credentialFlags(fs *flag.FlagSet) (username, password *string) {
	username = fs.String("username", "", "account username")
	password = fs.String("password", "", "account password")
	return username, password
}

// loggedInClient logs in and returns the client and session.
func loggedInClient(serverCfg config.Server, username, password string) (*client.Client, *client.Session) {
	c := client.New(serverCfg.Host, serverCfg.Port)
	sess, err := c.Login(username, password)
	if err != nil {
		fatal(err)
	}
	return c, sess
}

func runRegister(serverCfg config.Server, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username, password := credentialFlags(fs)
	fs.Parse(args)

	c := client.New(serverCfg.Host, serverCfg.Port)
	defer c.Close()
	if err := c.Register(*username, *password); err != nil {
		fatal(err)
	}
	fmt.Printf("account %q created\n", *username)
}

func runAdd(serverCfg config.Server, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	username, password := credentialFlags(fs)
	faceValue := fs.Float64("value", 0, "face value in dollars")
	serial := fs.String("serial", "", "serial number")
	location := fs.String("location", "", "printing location code")
	year := fs.Int("year", 0, "series year")
	star := fs.Bool("star", false, "star note")
	image := fs.String("image", "", "path to a photo of the note")
	fs.Parse(args)

	bill := protocol.AddBill{
		FaceValue:    *faceValue,
		SerialNumber: *serial,
	}
	if *location != "" {
		bill.PrintingLocation = location
	}
	if *year != 0 {
		bill.SeriesYear = year
	}
	if *star {
		bill.IsStarNote = star
	}
	if *image != "" {
		bill.ImagePath = image
	}

	c, sess := loggedInClient(serverCfg, *username, *password)
	defer c.Close()
	if err := c.AddBill(sess, bill); err != nil {
		fatal(err)
	}
	fmt.Printf("recorded bill %s\n", *serial)
}

func runSearch(serverCfg config.Server, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	username, password := credentialFlags(fs)
	faceValue := fs.Float64("value", 0, "face value filter")
	location := fs.String("location", "", "printing location substring filter")
	year := fs.Int("year", 0, "series year filter")
	star := fs.Bool("star", false, "star notes only")
	fs.Parse(args)

	var criteria models.SearchCriteria
	if *faceValue != 0 {
		criteria.FaceValue = faceValue
	}
	if *location != "" {
		criteria.PrintingLocation = location
	}
	if *year != 0 {
		criteria.SeriesYear = year
	}
	if *star {
		criteria.IsStarNote = star
	}

	c, sess := loggedInClient(serverCfg, *username, *password)
	defer c.Close()
	bills, err := c.SearchBills(sess, criteria)
	if err != nil {
		fatal(err)
	}
	printBills(bills)
}

func runMine(serverCfg config.Server, args []string) {
	fs := flag.NewFlagSet("mine", flag.ExitOnError)
	username, password := credentialFlags(fs)
	fs.Parse(args)

	c, sess := loggedInClient(serverCfg, *username, *password)
	defer c.Close()
	bills, err := c.MyBills(sess)
	if err != nil {
		fatal(err)
	}
	printBills(bills)
}

func runUpdate(serverCfg config.Server, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	username, password := credentialFlags(fs)
	serial := fs.String("serial", "", "serial number of the bill to update")
	location := fs.String("location", "", "new printing location")
	year := fs.Int("year", 0, "new series year")
	estimated := fs.Float64("estimated", 0, "new estimated value")
	image := fs.String("image", "", "new image path")
	fs.Parse(args)

	var patch models.BillPatch
	if *location != "" {
		patch.PrintingLocation = location
	}
	if *year != 0 {
		patch.SeriesYear = year
	}
	if *estimated != 0 {
		patch.EstimatedValue = estimated
	}
	if *image != "" {
		patch.ImagePath = image
	}

	c, sess := loggedInClient(serverCfg, *username, *password)
	defer c.Close()
	if err := c.UpdateBill(sess, *serial, patch); err != nil {
		fatal(err)
	}
	fmt.Printf("updated bill %s\n", *serial)
}

func runEstimate(args []string) {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	serial := fs.String("serial", "", "serial number")
	faceValue := fs.Float64("value", 0, "face value in dollars")
	year := fs.Int("year", 0, "series year")
	fs.Parse(args)

	bill := models.Bill{SerialNumber: *serial, FaceValue: *faceValue}
	if *year != 0 {
		bill.SeriesYear = year
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	value, ok := valuation.New().Estimate(ctx, bill)
	if !ok {
		fmt.Println("no estimate available")
		return
	}
	fmt.Printf("estimated value: $%.2f\n", value)
}

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	image := fs.String("image", "", "path to a photo of the note")
	endpoint := fs.String("endpoint", os.Getenv("OCR_ENDPOINT"), "image analysis service URL")
	fs.Parse(args)

	scanner := billscan.NewScanner(&billscan.HTTPRecognizer{Endpoint: *endpoint})
	result := scanner.ProcessImage(context.Background(), *image)
	if !result.Success {
		fmt.Println("no serial number found")
		return
	}
	fmt.Printf("serial number: %s\n", result.SerialNumber)
	if result.IsStarNote != nil && *result.IsStarNote {
		fmt.Println("looks like a star note")
	}
}

func runInvite(serverCfg config.Server) {
	token, err := config.CreateInvite(serverCfg.Token, serverCfg.Host, serverCfg.Port, 30*24*time.Hour)
	if err != nil {
		fatal(err)
	}
	fmt.Println(token)
}

func runAccept(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("accept", flag.ExitOnError)
	token := fs.String("token", "", "invitation token")
	secret := fs.String("secret", "", "inviting installation's server token")
	fs.Parse(args)

	claims, err := config.ParseInvite(*secret, *token)
	if err != nil {
		fatal(err)
	}
	err = cfg.AddInvitation(config.Invitation{
		Host:  claims.Host,
		Port:  claims.Port,
		Token: *token,
	})
	if err != nil {
		fatal(err)
	}
	fmt.Printf("saved invitation to %s:%d\n", claims.Host, claims.Port)
}

func printBills(bills []models.Bill) {
	if len(bills) == 0 {
		fmt.Println("no bills found")
		return
	}
	for _, b := range bills {
		line := fmt.Sprintf("%-12s $%-8g by %s", b.SerialNumber, b.FaceValue, b.AddedByUsername)
		if b.SeriesYear != nil {
			line += fmt.Sprintf("  series %d", *b.SeriesYear)
		}
		if b.IsStarNote != nil && *b.IsStarNote {
			line += "  *"
		}
		if b.EstimatedValue != nil {
			line += fmt.Sprintf("  est $%.2f", *b.EstimatedValue)
		}
		fmt.Println(line)
	}
}
