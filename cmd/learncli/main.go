package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/chat"
	"github.com/biolaureat/learn-client/docs"
	"github.com/biolaureat/learn-client/internal/config"
	"github.com/biolaureat/learn-client/internal/utils"
	"github.com/biolaureat/learn-client/quiz"
	"github.com/biolaureat/learn-client/session"
	"github.com/biolaureat/learn-client/session/sqlitestore"
	"github.com/biolaureat/learn-client/social"
)

const usageText = `usage: learncli <command> [flags]

commands:
  login <identifier>      log in with email or username
  register                create an account
  logout                  clear the stored session
  profile                 show the current profile
  progress                show per-module unlock state
  quiz -module N          play a module quiz
  daily [-another]        play the daily challenge
  docquiz -id N           play a quiz generated from an uploaded PDF
  upload <file.pdf>       upload a PDF document
  documents               list uploaded documents
  rmdoc -id N             delete an uploaded document
  chat [-module N]        talk to the tutoring chatbot
  friends <list|search|add|remove|stats> [...]
`

type app struct {
	log       zerolog.Logger
	sessions  *session.Manager
	quizzes   *quiz.Service
	documents *docs.Service
	friends   *social.Service
	client    *api.Client
	stdin     *bufio.Reader
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if api.IsCanceled(err) {
			fmt.Println("operation cancelled")
			return
		}
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	_ = godotenv.Load()

	cfg, err := config.Load(config.GetEnv("LEARN_CONFIG", "learn-client.yaml"))
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if len(args) == 0 {
		displayAppname(cfg.GetAppName())
		fmt.Print(usageText)
		return nil
	}

	store, err := sqlitestore.New(cfg.GetSessionDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.GetBaseURL(), api.WithLogger(logger))
	sessions, err := session.NewManager(client, store, session.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sessions.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not restore saved session")
	}

	quizzes, err := quiz.NewService(client, sessions, quiz.WithLogger(logger))
	if err != nil {
		return err
	}
	documents, err := docs.NewService(client, sessions)
	if err != nil {
		return err
	}
	friends, err := social.NewService(client, sessions)
	if err != nil {
		return err
	}

	a := &app{
		log:       logger,
		sessions:  sessions,
		quizzes:   quizzes,
		documents: documents,
		friends:   friends,
		client:    client,
		stdin:     bufio.NewReader(os.Stdin),
	}
	return a.dispatch(ctx, args[0], args[1:])
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx)
	case "logout":
		a.sessions.Logout(ctx)
		a.quizzes.ClearProgress()
		fmt.Println("logged out")
		return nil
	case "profile":
		return a.cmdProfile(ctx)
	case "progress":
		return a.cmdProgress(ctx)
	case "quiz":
		return a.cmdModuleQuiz(ctx, args)
	case "daily":
		return a.cmdDaily(ctx, args)
	case "docquiz":
		return a.cmdDocQuiz(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "documents":
		return a.cmdDocuments(ctx)
	case "rmdoc":
		return a.cmdRemoveDocument(ctx, args)
	case "chat":
		return a.cmdChat(ctx, args)
	case "friends":
		return a.cmdFriends(ctx, args)
	default:
		fmt.Print(usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("login needs an email or username")
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	user, err := a.sessions.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Printf("welcome, %s\n", utils.Value(user).Username)
	if err := a.quizzes.RefreshProgress(ctx); err != nil {
		a.log.Warn().Err(err).Msg("could not fetch progress")
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context) error {
	username, err := a.prompt("username: ")
	if err != nil {
		return err
	}
	email, err := a.prompt("email: ")
	if err != nil {
		return err
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	confirm, err := a.prompt("confirm password: ")
	if err != nil {
		return err
	}

	_, err = a.sessions.Register(ctx, session.Registration{
		Username: username,
		Email:    email,
		Password: password,
		Confirm:  confirm,
	})
	if err != nil {
		return err
	}
	if a.sessions.Authenticated() {
		fmt.Println("account created, you are logged in")
	} else {
		fmt.Println("account created, log in to continue")
	}
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	user, err := a.sessions.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	fmt.Printf("  score: %d  streak: %d (best %d)\n", user.TotalScore, user.CurrentStreak, user.LongestStreak)
	if user.LastDailyQuizDate != "" {
		fmt.Printf("  last daily: %s\n", user.LastDailyQuizDate)
	}
	return nil
}

func (a *app) cmdProgress(ctx context.Context) error {
	if err := a.quizzes.RefreshProgress(ctx); err != nil {
		return err
	}
	progress := a.quizzes.Progress()
	if len(progress) == 0 {
		fmt.Println("no module progress yet")
		return nil
	}
	for module, level := range progress {
		fmt.Printf("module %s: level %d/%d unlocked\n", module, level+1, quiz.DefaultLevelCount)
	}
	return nil
}

func (a *app) cmdModuleQuiz(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	module := fs.String("module", "", "module number")
	out := fs.String("o", "", "write the report to a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *module == "" {
		return errors.New("quiz needs -module")
	}

	fmt.Println("generating quiz, this can take tens of seconds (Ctrl-C cancels)...")
	questions, err := a.quizzes.StartModule(ctx, *module)
	if err != nil {
		return err
	}
	return a.play(ctx, questions, "Modul "+*module, *module, *out)
}

func (a *app) cmdDaily(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("daily", flag.ContinueOnError)
	another := fs.Bool("another", false, "generate a fresh set even if today's daily is done")
	out := fs.String("o", "", "write the report to a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("generating the daily challenge (Ctrl-C cancels)...")
	daily, err := a.quizzes.StartDaily(ctx, *another)
	if err != nil {
		return err
	}
	if len(daily.Questions) == 0 {
		if daily.Note != "" {
			fmt.Println(daily.Note)
		}
		fmt.Println("today's daily is already done; rerun with -another for a fresh set")
		return nil
	}
	if daily.AlreadyCompletedToday && daily.Note != "" {
		fmt.Println(daily.Note)
	}
	return a.play(ctx, daily.Questions, "Daily Challenge", "", *out)
}

func (a *app) cmdDocQuiz(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("docquiz", flag.ContinueOnError)
	id := fs.Int("id", 0, "document id")
	out := fs.String("o", "", "write the report to a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("docquiz needs -id")
	}

	fmt.Println("generating quiz from document (Ctrl-C cancels)...")
	questions, err := a.quizzes.StartDocument(ctx, *id)
	if err != nil {
		return err
	}
	return a.play(ctx, questions, fmt.Sprintf("Document %d", *id), "", *out)
}

// play drives one interactive attempt and submits the result. A failed
// submission only warns: the report is shown either way.
func (a *app) play(ctx context.Context, questions []api.Question, title, moduleID, outPath string) error {
	run, err := quiz.NewRun(questions)
	if err != nil {
		return err
	}

	for !run.Finished() {
		question := run.Current()
		fmt.Printf("\n[%d/%d] %s\n", run.Index()+1, run.Len(), question.Question)
		for i, option := range question.Options {
			fmt.Printf("  %d) %s\n", i+1, option)
		}

		if selected, ok := run.Selection(); ok {
			if run.Revealed() {
				a.showFeedback(question, selected)
			} else {
				fmt.Printf("your answer: %s\n", question.Options[selected])
			}
			if err := a.navigate(run); err != nil {
				return err
			}
			continue
		}

		input, err := a.prompt("answer (number, p = previous): ")
		if err != nil {
			return err
		}
		if input == "p" {
			run.Retreat()
			continue
		}
		choice, err := strconv.Atoi(input)
		if err != nil {
			fmt.Println("enter the number of an option")
			continue
		}
		if _, err := run.Select(choice - 1); err != nil {
			switch {
			case errors.Is(err, quiz.ErrInvalidOption):
				fmt.Println("that option does not exist")
			case errors.Is(err, quiz.ErrAnswerLocked):
				fmt.Println("this question is already answered")
			default:
				return err
			}
			continue
		}
		selected, _ := run.Selection()
		a.showFeedback(question, selected)
		if err := a.navigate(run); err != nil {
			return err
		}
	}

	report := run.Report()
	fmt.Printf("\n%s: %d/%d correct\n", title, report.CorrectCount, report.Total)

	if err := a.quizzes.SubmitAndReconcile(ctx, report, moduleID); err != nil {
		fmt.Println("warning: result could not be recorded, progress unchanged")
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteText(f, title); err != nil {
			return err
		}
		fmt.Println("report written to", outPath)
	}
	return nil
}

func (a *app) showFeedback(question api.Question, selected int) {
	if selected == question.CorrectIndex {
		fmt.Println("correct!")
	} else {
		fmt.Printf("wrong, the answer is: %s\n", question.Options[question.CorrectIndex])
	}
	if question.Explanation != "" {
		fmt.Println(question.Explanation)
	}
}

func (a *app) navigate(run *quiz.Run) error {
	input, err := a.prompt("Enter = next, p = previous: ")
	if err != nil {
		return err
	}
	if input == "p" {
		run.Retreat()
		return nil
	}
	return run.Advance()
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("upload needs a file path")
	}
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := a.documents.Upload(ctx, info.Name(), info.Size(), f)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %s as document %d\n", doc.Filename, doc.ID)
	return nil
}

func (a *app) cmdDocuments(ctx context.Context) error {
	listed, err := a.documents.List(ctx)
	if err != nil {
		return err
	}
	if len(listed) == 0 {
		fmt.Println("no documents uploaded")
		return nil
	}
	for _, doc := range listed {
		fmt.Printf("%4d  %s  %s\n", doc.ID, doc.Filename, doc.UploadedAt)
	}
	return nil
}

func (a *app) cmdRemoveDocument(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rmdoc", flag.ContinueOnError)
	id := fs.Int("id", 0, "document id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("rmdoc needs -id")
	}
	if err := a.documents.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Println("document deleted")
	return nil
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	module := fs.String("module", "", "restrict context to one module, or \"all\"")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conversation, err := chat.NewConversation(a.client, a.sessions, *module)
	if err != nil {
		return err
	}
	fmt.Println("chat started, empty line quits")
	for {
		prompt, err := a.prompt("> ")
		if err != nil || prompt == "" {
			return nil
		}
		reply, err := conversation.Ask(ctx, prompt)
		if err != nil {
			if api.IsCanceled(err) {
				return nil
			}
			fmt.Println("error:", userMessage(err))
			continue
		}
		fmt.Println(reply)
	}
}

func (a *app) cmdFriends(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("friends needs a subcommand: list, search, add, remove, stats")
	}
	switch args[0] {
	case "list":
		listed, err := a.friends.List(ctx)
		if err != nil {
			return err
		}
		for _, friend := range listed {
			fmt.Printf("%4d  %-20s score %d, streak %d\n", friend.ID, friend.Username, friend.TotalScore, friend.CurrentStreak)
		}
		return nil
	case "search":
		if len(args) < 2 {
			return errors.New("friends search needs a query")
		}
		found, err := a.friends.Search(ctx, args[1])
		if err != nil {
			return err
		}
		for _, friend := range found {
			fmt.Printf("%4d  %s\n", friend.ID, friend.Username)
		}
		return nil
	case "add", "remove":
		if len(args) < 2 {
			return fmt.Errorf("friends %s needs a user id", args[0])
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		if args[0] == "add" {
			err = a.friends.Add(ctx, id)
		} else {
			err = a.friends.Remove(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Println("done")
		return nil
	case "stats":
		stats, err := a.friends.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d friends, average score %.1f, top score %d\n",
			stats.Count, stats.Summary.AvgScore, stats.Summary.TopScore)
		return nil
	default:
		return fmt.Errorf("unknown friends subcommand %q", args[0])
	}
}

func (a *app) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// userMessage keeps the one-line error surface: known failures get friendly
// text, everything else its plain message.
func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return "you are not logged in"
	case errors.Is(err, session.ErrSessionExpired):
		return "your session expired, please log in again"
	}
	var validationErr *session.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Reason
	}
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return "could not reach the server"
	}
	return err.Error()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
