package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/provlog"
	"github.com/jaxwc/mapmyhealth/internal/view"
)

func consoleCmd() *cobra.Command {
	var packPath, dbPath string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive case-building session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if packPath == "" {
				return fmt.Errorf("--pack is required (or set MAPMYHEALTH_PACK)")
			}
			p, err := pack.Load(packPath)
			if err != nil {
				return err
			}

			var store *provlog.Store
			if dbPath != "" {
				store, err = provlog.NewStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			runConsole(p, store)
			return nil
		},
	}

	cmd.Flags().StringVar(&packPath, "pack", envOr("MAPMYHEALTH_PACK", ""), "content pack YAML path")
	cmd.Flags().StringVar(&dbPath, "db", envOr("MAPMYHEALTH_DB", ""), "evaluation log database (no logging when empty)")
	return cmd
}

// #region repl

type session struct {
	p       *pack.ContentPack
	store   *provlog.Store
	id      string
	current casefile.CaseState
	last    view.View
}

func runConsole(p *pack.ContentPack, store *provlog.Store) {
	s := &session{p: p, store: store, id: uuid.New().String()}

	fmt.Printf("MapMyHealth console ready. Pack: %s %s (%d conditions, %d actions)\n",
		p.Name, p.Version, len(p.Conditions), len(p.Actions))
	fmt.Printf("Session: %s\n", s.id)
	fmt.Println("Commands: add/absent/unset <finding>, patient k=v..., onset [finding] <days>, do <action> <outcome>, show, plan, why <condition>, help, quit")

	s.reevaluate()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		s.dispatch(line)
	}
}

func (s *session) dispatch(line string) {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "help":
		fmt.Println("add <finding>      record a finding present")
		fmt.Println("absent <finding>   record a finding absent")
		fmt.Println("unset <finding>    return a finding to unknown")
		fmt.Println("patient k=v ...    set demographics (age, sex, season, pregnant)")
		fmt.Println("onset <days>       set case-level days since onset")
		fmt.Println("onset <finding> <days>  set a finding's own onset day")
		fmt.Println("do <action> <outcome>  apply an action outcome")
		fmt.Println("show               repeat the current view")
		fmt.Println("plan               preview multi-step branches")
		fmt.Println("why <condition>    explain a condition's evidence")
		fmt.Println("quit               leave")
	case "add", "absent":
		if len(rest) != 1 {
			fmt.Printf("usage: %s <finding>\n", cmd)
			return
		}
		if s.p.Finding(rest[0]) == nil {
			fmt.Printf("unknown finding %q\n", rest[0])
			return
		}
		presence := pack.PresencePresent
		if cmd == "absent" {
			presence = pack.PresenceAbsent
		}
		s.current = s.current.SetFinding(rest[0], presence)
		s.reevaluate()
	case "unset":
		if len(rest) != 1 {
			fmt.Println("usage: unset <finding>")
			return
		}
		s.current = s.current.RemoveFinding(rest[0])
		s.reevaluate()
	case "patient":
		if err := s.setPatient(rest); err != nil {
			fmt.Println(err)
			return
		}
		s.reevaluate()
	case "onset":
		if len(rest) != 1 && len(rest) != 2 {
			fmt.Println("usage: onset <days> | onset <finding> <days>")
			return
		}
		days, err := strconv.Atoi(rest[len(rest)-1])
		if err != nil {
			fmt.Printf("bad day count %q\n", rest[len(rest)-1])
			return
		}
		if len(rest) == 1 {
			s.current.DaysSinceOnset = &days
			s.reevaluate()
			return
		}
		if s.p.Finding(rest[0]) == nil {
			fmt.Printf("unknown finding %q\n", rest[0])
			return
		}
		fv := casefile.FindingValue{Finding: rest[0], Presence: s.current.Presence(rest[0])}
		for _, existing := range s.current.Findings {
			if existing.Finding == rest[0] {
				fv = existing
				break
			}
		}
		fv.DaysSinceOnset = &days
		s.current = s.current.SetObservation(fv)
		s.reevaluate()
	case "do":
		if len(rest) != 2 {
			fmt.Println("usage: do <action> <outcome>")
			return
		}
		next, report := casefile.ApplyOutcome(s.current, s.p, rest[0], rest[1])
		for _, warning := range report.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		if report.NotFound {
			return
		}
		s.current = next
		s.reevaluate()
	case "show":
		renderView(os.Stdout, s.last)
	case "plan":
		cfg := view.DefaultConfig()
		cfg.IncludeBranches = true
		v := view.BuildView(s.current, s.p, cfg)
		if v.Triage.Urgent {
			fmt.Println("case is urgent; no plan produced")
			return
		}
		renderBranches(os.Stdout, v.Bottom.Branches)
	case "why":
		if len(rest) != 1 {
			fmt.Println("usage: why <condition>")
			return
		}
		s.explain(rest[0])
	default:
		fmt.Printf("unknown command %q (try help)\n", cmd)
	}
}

// reevaluate rebuilds the view from scratch after every mutation; evidence is
// never folded twice because BuildView always reseeds priors.
func (s *session) reevaluate() {
	start := time.Now()
	s.last = view.BuildView(s.current, s.p, view.DefaultConfig())
	elapsed := time.Since(start)

	renderView(os.Stdout, s.last)

	if s.store != nil {
		rec, err := s.store.Log(recordView(s.id, s.current, s.p, s.last, elapsed))
		if err != nil {
			log.Printf("[CONSOLE] logging error: %v", err)
			return
		}
		fmt.Printf("[logged %s]\n", rec.EvalID)
	}
}

func (s *session) setPatient(pairs []string) error {
	patient := s.current.Patient
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected k=v, got %q", pair)
		}
		switch key {
		case "age":
			age, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("bad age %q", value)
			}
			patient.Age = &age
		case "sex":
			patient.Sex = value
		case "season":
			patient.Season = value
		case "pregnant":
			pregnant, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("bad pregnant flag %q", value)
			}
			patient.Pregnant = &pregnant
		default:
			return fmt.Errorf("unknown demographic %q", key)
		}
	}
	s.current.Patient = patient
	return nil
}

func (s *session) explain(conditionID string) {
	for _, rc := range s.last.Top.RankedConditions {
		if rc.ID != conditionID {
			continue
		}
		if rc.Why.Kind != belief.WhyLREvidence {
			fmt.Printf("%s: no evidence applied yet\n", rc.Name)
			return
		}
		fmt.Printf("%s (%.1f%%):\n", rc.Name, rc.Probability*100)
		for _, contribution := range rc.Why.Contributions {
			source := "table"
			if contribution.FromTest {
				source = "test performance"
			}
			fmt.Printf("  %-30s %-8s LR %.2f (%s)\n",
				contribution.Finding, contribution.Presence, contribution.LR, source)
		}
		return
	}
	fmt.Printf("condition %q not in the current ranking\n", conditionID)
}

// #endregion repl
