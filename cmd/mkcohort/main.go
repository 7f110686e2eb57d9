// mkcohort seeds a database with a synthetic but clinically plausible cohort
// for local development and demos. Episodes are spread over the past year
// with a mix of single- and multi-complaint patients, staggered discharges,
// overrides, and deliberately incomplete score pairs so every dashboard
// metric has something to show.
// Usage: go run ./cmd/mkcohort --dsn "$REGISTRY_DB_URL" --episodes 120
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/logging"
	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/pgstore"
)

var domains = []struct {
	domain  string
	regions []string
	codes   []string
}{
	{"orthopedic", []string{"lumbar spine", "cervical spine", "shoulder", "knee"}, []string{"NPRS", "ODI", "NDI", "QUICKDASH", "LEFS"}},
	{"vestibular", []string{"head"}, []string{"BBS", "TUG"}},
	{"neurologic", []string{"lower extremity", "upper extremity"}, []string{"BBS", "TUG", "PSFS"}},
}

var dischargeReasons = []string{
	"goals met",
	"plateau",
	"self-discharged",
	"insurance limit",
	"referred out",
}

var patientNames = []string{
	"A. Rivera", "B. Chen", "C. Okafor", "D. Lindqvist", "E. Nakamura",
	"F. Moreau", "G. Stanton", "H. Vasquez", "I. Petrov", "J. Adeyemi",
}

func main() {
	dsn := flag.String("dsn", os.Getenv("REGISTRY_DB_URL"), "Postgres connection string")
	episodes := flag.Int("episodes", 100, "number of episodes to generate")
	seed := flag.Int64("seed", 7, "random seed (fixed default keeps demo data stable)")
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "--dsn or REGISTRY_DB_URL is required")
		os.Exit(1)
	}

	log := logging.Setup("text")
	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	pool, err := pgstore.NewPool(ctx, *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pgstore.ApplyMigrations(ctx, pool, log); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	store := pgstore.New(pool)
	cat := catalog.Builtin()
	now := time.Now().UTC().Truncate(24 * time.Hour)

	scoreCh := make(chan *model.OutcomeScore, 256)
	copyDone := make(chan error, 1)
	go func() {
		_, err := store.CopyScores(ctx, scoreCh)
		copyDone <- err
	}()

	var targetCount, scoreCount int
	for i := 0; i < *episodes; i++ {
		bucket := domains[rng.Intn(len(domains))]
		epType := model.EpisodeMusculoskeletal
		if bucket.domain == "neurologic" || bucket.domain == "vestibular" {
			epType = model.EpisodeNeurologic
		}

		start := now.AddDate(0, 0, -rng.Intn(360))
		e := model.Episode{
			ID:          uuid.NewString(),
			PatientName: patientNames[rng.Intn(len(patientNames))],
			Type:        epType,
			Status:      model.EpisodeActive,
			StartDate:   start,
			ClinicID:    "clinic-main",
			ClinicianID: fmt.Sprintf("clinician-%d", rng.Intn(6)+1),
		}

		nTargets := 1
		if rng.Float64() < 0.35 {
			nTargets = 2 + rng.Intn(2)
		}

		targets := make([]model.CareTarget, 0, nTargets)
		allDischarged := true
		for j := 0; j < nTargets; j++ {
			region := bucket.regions[rng.Intn(len(bucket.regions))]
			t := model.CareTarget{
				ID:         uuid.NewString(),
				EpisodeID:  e.ID,
				Name:       region + " complaint",
				Domain:     bucket.domain,
				BodyRegion: region,
				StartDate:  start.AddDate(0, 0, rng.Intn(7)),
			}
			if rng.Float64() < 0.7 {
				// Staggered discharges within multi-target episodes.
				d := t.StartDate.AddDate(0, 0, 21+rng.Intn(70)+j*14)
				reason := dischargeReasons[rng.Intn(len(dischargeReasons))]
				t.DischargeDate = &d
				t.DischargeReason = &reason
			} else {
				allDischarged = false
			}
			if rng.Float64() < 0.08 {
				reason := "patient relocated mid-episode"
				t.Override = true
				t.OverrideReason = &reason
			}
			targets = append(targets, t)
		}
		if allDischarged {
			e.Status = model.EpisodeClosed
			last := targets[0].DischargeDate
			for _, t := range targets[1:] {
				if t.DischargeDate.After(*last) {
					last = t.DischargeDate
				}
			}
			e.CloseDate = last
		}

		if err := store.InsertEpisode(ctx, &e); err != nil {
			fmt.Fprintf(os.Stderr, "seed episode: %v\n", err)
			os.Exit(1)
		}
		for k := range targets {
			t := &targets[k]
			if err := store.InsertCareTarget(ctx, t); err != nil {
				fmt.Fprintf(os.Stderr, "seed care target: %v\n", err)
				os.Exit(1)
			}
			targetCount++

			code := bucket.codes[rng.Intn(len(bucket.codes))]
			ins, _ := cat.Lookup(code)
			baseline := 30 + rng.Float64()*40
			scoreCh <- &model.OutcomeScore{
				CareTargetID:   t.ID,
				InstrumentCode: code,
				ScoreType:      model.ScoreBaseline,
				Score:          round1(baseline),
				RecordedAt:     t.StartDate,
			}
			scoreCount++

			// ~15% of targets never get a discharge score, exercising the
			// incomplete/missingness paths.
			if t.DischargeDate != nil && rng.Float64() < 0.85 {
				change := rng.Float64() * 3 * ins.MCID
				if rng.Float64() < 0.15 {
					change = -change / 2
				}
				discharge := baseline - change
				if ins.Direction == catalog.HigherIsBetter {
					discharge = baseline + change
				}
				scoreCh <- &model.OutcomeScore{
					CareTargetID:   t.ID,
					InstrumentCode: code,
					ScoreType:      model.ScoreDischarge,
					Score:          round1(discharge),
					RecordedAt:     *t.DischargeDate,
				}
				scoreCount++
			}
		}
	}

	close(scoreCh)
	if err := <-copyDone; err != nil {
		fmt.Fprintf(os.Stderr, "copy scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d episodes, %d care targets, %d scores\n", *episodes, targetCount, scoreCount)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
