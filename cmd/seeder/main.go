package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "feature service base URL")
	mode := flag.String("mode", "ingest", "ingest (queued) or extract (synchronous)")
	count := flag.Int("n", 3, "number of sample battles to send")
	flag.Parse()

	var path string
	switch *mode {
	case "ingest":
		path = "/api/v1/battles/ingest"
	case "extract":
		path = "/api/v1/features/extract"
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	// The handler reads one JSON battle per line.
	var payload bytes.Buffer
	enc := json.NewEncoder(&payload)
	for i := 0; i < *count; i++ {
		if err := enc.Encode(sampleBattle(i)); err != nil {
			log.Fatalf("Failed to marshal battle: %v", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+path, &payload)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Response: %s\n", string(body))

	if resp.StatusCode >= 300 {
		log.Fatal("Seeding failed")
	}
}

// sampleBattle is a short Gen 1 OU battle: Starmie outspeeds and chips a
// paralysed Snorlax, which is then KO'd by Tauros after a switch.
func sampleBattle(i int) models.BattleRecord {
	mon := func(name string, hp, atk, def, spa, spd, spe float64, types ...string) models.Pokemon {
		return models.Pokemon{
			Name: name, Level: models.Float(100), Types: types,
			BaseHP: models.Float(hp), BaseAtk: models.Float(atk), BaseDef: models.Float(def),
			BaseSpA: models.Float(spa), BaseSpD: models.Float(spd), BaseSpe: models.Float(spe),
		}
	}
	state := func(name string, hp float64, status string) *models.PokemonState {
		s := &models.PokemonState{Name: name, HPPct: models.Float(hp)}
		if status != "" {
			s.Status = &status
		}
		return s
	}
	move := func(name, typ, category string, power float64) *models.MoveDetails {
		return &models.MoveDetails{Name: name, Type: typ, Category: category, BasePower: models.Float(power), Accuracy: models.Float(1)}
	}

	lead := mon("snorlax", 160, 110, 65, 65, 110, 30, "normal")
	return models.BattleRecord{
		BattleID:  models.FlexID(uuid.NewString()),
		PlayerWon: models.Bool(i%2 == 0),
		P1Team: []models.Pokemon{
			mon("starmie", 60, 75, 85, 100, 85, 115, "water", "psychic"),
			mon("tauros", 75, 100, 95, 40, 70, 110, "normal"),
			mon("chansey", 250, 5, 5, 35, 105, 50, "normal"),
			mon("exeggutor", 95, 95, 85, 125, 75, 55, "grass", "psychic"),
			mon("alakazam", 55, 50, 45, 135, 95, 120, "psychic"),
			mon("zapdos", 90, 90, 85, 125, 90, 100, "electric", "flying"),
		},
		P2Lead: &lead,
		Timeline: []models.TurnSnapshot{
			{
				Turn: 1, P1Action: models.ActionAttack, P2Action: models.ActionAttack,
				P1State: state("starmie", 100, ""), P2State: state("snorlax", 100, ""),
				P1Move: move("thunderwave", "electric", "STATUS", 0), P2Move: move("bodyslam", "normal", "PHYSICAL", 85),
			},
			{
				Turn: 2, P1Action: models.ActionAttack, P2Action: models.ActionAttack,
				P1State: state("starmie", 58, ""), P2State: state("snorlax", 81, "par"),
				P1Move: move("surf", "water", "SPECIAL", 95), P2Move: move("amnesia", "psychic", "STATUS", 0),
			},
			{
				Turn: 3, P1Action: models.ActionSwitch, P2Action: models.ActionAttack,
				P1State: state("tauros", 100, ""), P2State: state("snorlax", 81, "par"),
				P2Move: move("bodyslam", "normal", "PHYSICAL", 85),
			},
			{
				Turn: 4, P1Action: models.ActionAttack,
				P1State: state("tauros", 71, ""), P2State: state("snorlax", 0, "fnt"),
				P1Move: move("hyperbeam", "normal", "PHYSICAL", 150),
			},
		},
	}
}
