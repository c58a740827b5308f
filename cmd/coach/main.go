package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"languagecoach/internal/config"
	"languagecoach/internal/content"
	"languagecoach/internal/drill"
	"languagecoach/internal/logging"
	"languagecoach/internal/progress"
	"languagecoach/internal/schedule"
	"languagecoach/internal/speech"
)

const pageKey = "coach.page"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New(), os.Stdin, schedule.Real{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is what every drill command shares once flags are parsed
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	page      *content.Page
	client    *progress.Client
	speaker   *speech.Adapter
	presenter *terminalPresenter
	scheduler schedule.Scheduler
	in        io.Reader
	out       io.Writer
}

func newRootCmd(v *viper.Viper, in io.Reader, scheduler schedule.Scheduler) *cobra.Command {
	a := &app{in: in, scheduler: scheduler}

	root := &cobra.Command{
		Use:          "coach",
		Short:        "Run language drills in the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("page", "f", "", "page-data JSON file (LANG, LESSON_ID, VOCAB, QUESTIONS, ...)")
	root.PersistentFlags().String("server", "", "progress server URL, empty to keep progress local")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	bindFlagToViper(v, pageKey, root.PersistentFlags().Lookup("page"))
	bindFlagToViper(v, "PROGRESS_URL", root.PersistentFlags().Lookup("server"))
	bindFlagToViper(v, "LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
		return a.setup(cmd, v)
	}

	practiceCmd := &cobra.Command{
		Use:   "practice",
		Short: "Mixed practice with hearts: choices, typed answers and word order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.page.HasPractice() {
				return a.missing("practice questions")
			}
			p := drill.NewPractice(a.page.PracticeQuestions, a.options())
			return a.run(cmd.Context(), func(ctx context.Context) (lineDrill, bool) {
				return newPracticeSession(p), p.Start(ctx)
			})
		},
	}

	dictationCmd := &cobra.Command{
		Use:   "dictation",
		Short: "Listen and type each word",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.page.HasDictation() {
				return a.missing("dictation items")
			}
			d := drill.NewDictation(a.page.DictationItems, a.options())
			return a.run(cmd.Context(), func(ctx context.Context) (lineDrill, bool) {
				return newDictationSession(d), d.Start(ctx)
			})
		},
	}

	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Multiple-choice lesson quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.page.HasQuiz() {
				return a.missing("quiz questions")
			}
			q := drill.NewQuiz(a.page.Questions, a.options())
			return a.run(cmd.Context(), func(ctx context.Context) (lineDrill, bool) {
				return newQuizSession(q), q.Start(ctx)
			})
		},
	}

	flashcardsCmd := &cobra.Command{
		Use:   "flashcards",
		Short: "Flip through the lesson vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.page.HasFlashcards() {
				return a.missing("vocabulary")
			}
			shuffle, _ := cmd.Flags().GetBool("shuffle")
			deck := drill.NewDeck(a.page.Vocab, a.presenter, a.options())
			return a.run(cmd.Context(), func(ctx context.Context) (lineDrill, bool) {
				if shuffle {
					return &deckSession{deck: deck}, deck.Shuffle(ctx)
				}
				return &deckSession{deck: deck}, deck.Start(ctx)
			})
		},
	}
	flashcardsCmd.Flags().Bool("shuffle", false, "deal the cards in random order")

	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Show today's XP, reviews and streak from the progress server",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.client.Activity(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "XP today: %d\nReviews today: %d\nStreak: %d day(s)\n",
				summary.XPToday, summary.ReviewsToday, summary.StreakDays)
			return nil
		},
	}
	// activity needs no page
	activityCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
		return a.setupClient(cmd, v)
	}

	root.AddCommand(practiceCmd, dictationCmd, quizCmd, flashcardsCmd, activityCmd)
	return root
}

func (a *app) setupClient(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.out = cmd.OutOrStdout()
	a.client = progress.NewClient(cfg.ProgressURL, log)
	return nil
}

func (a *app) setup(cmd *cobra.Command, v *viper.Viper) error {
	if err := a.setupClient(cmd, v); err != nil {
		return err
	}

	pagePath := v.GetString(pageKey)
	if pagePath == "" {
		return fmt.Errorf("--page is required")
	}
	page, err := content.Load(pagePath)
	if err != nil {
		return err
	}
	if err := page.Validate(); err != nil {
		return fmt.Errorf("invalid page data: %w", err)
	}
	a.page = page

	a.presenter = newTerminalPresenter(a.out)
	a.speaker = speech.NewAdapter(speech.NewConsoleEngine(a.out), a.scheduler, a.log)

	a.log.WithFields(logrus.Fields{
		"page":     pagePath,
		"language": page.Language,
		"lesson":   page.LessonID,
		"server":   a.cfg.ProgressURL,
	}).Debug("page loaded")
	return nil
}

func (a *app) options() drill.Options {
	return drill.Options{
		Language:  a.page.Language,
		LessonID:  a.page.LessonID,
		Presenter: a.presenter,
		Reporter:  a.client,
		Speaker:   a.speaker,
		Scheduler: a.scheduler,
		Logger:    a.log,
	}
}

// run starts a drill, feeds it learner input and flushes pending reports.
func (a *app) run(ctx context.Context, start func(ctx context.Context) (lineDrill, bool)) error {
	defer a.client.Wait()
	defer a.speaker.Stop()

	if a.page.LessonID > 0 && a.page.Language != "" {
		a.client.ReportLessonSeen(ctx, progress.LessonVisit{Language: a.page.Language, LessonID: a.page.LessonID})
	}

	session, ok := start(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Nothing to practice on this page.")
		return nil
	}
	return runLines(ctx, session, a.in)
}

func (a *app) missing(what string) error {
	fmt.Fprintf(a.out, "This page has no %s.\n", what)
	return nil
}

func bindFlagToViper(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}
