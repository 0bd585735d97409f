package features

import (
	"fmt"

	"github.com/pkmn-analytics/battle-features/internal/gamedata"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

var statSuffixes = [gamedata.EmbeddingDim]string{"hp", "atk", "def", "spa", "spd", "spe"}

func staticUnits() []Unit {
	return []Unit{
		{
			Name:    "lead_identity",
			Columns: categorical("p1_lead_name", "p2_lead_name"),
			Compute: func(s *BattleState, r Row) {
				r.SetCat("p1_lead_name", s.P1.Lead.Name)
				r.SetCat("p2_lead_name", s.P2.Lead.Name)
			},
		},
		{
			Name:    "lead_groups",
			Columns: categorical("p1_lead_group", "p2_lead_group"),
			Compute: func(s *BattleState, r Row) {
				r.SetCat("p1_lead_group", gamedata.LeadGroup(s.P1.Lead.Name))
				r.SetCat("p2_lead_group", gamedata.LeadGroup(s.P2.Lead.Name))
			},
		},
		{
			Name: "lead_stat_diffs",
			Columns: numeric("lead_hp_diff", "lead_atk_diff", "lead_def_diff", "lead_spa_diff",
				"lead_spd_diff", "lead_speed_diff", "total_stats_diff", "stats_speed_interaction"),
			Compute: computeLeadStatDiffs,
		},
		{
			Name: "lead_ratios",
			Columns: numeric(
				"atk_def_ratio_p1", "atk_def_ratio_p2",
				"hp_def_ratio_p1", "hp_def_ratio_p2",
				"atk_hp_ratio_p1", "atk_hp_ratio_p2",
				"def_hp_ratio_p1", "def_hp_ratio_p2",
				"hp_vs_total_stats_p1", "hp_vs_total_stats_p2",
				"lead_total_stats_p1", "lead_total_stats_p2",
				"hp_speed_interaction_lead",
				"p1_lead_special_total", "p2_lead_special_total", "special_total_diff",
				"p1_lead_physical_total", "p2_lead_physical_total", "physical_total_diff",
			),
			Compute: computeLeadRatios,
		},
		{
			Name:    "lead_bulk",
			Columns: numeric("lead_bulk_diff"),
			Compute: func(s *BattleState, r Row) {
				r.Set("lead_bulk_diff", bulk(s.P1.Lead.Stats())-bulk(s.P2.Lead.Stats()))
			},
		},
		{
			Name:    "lead_type",
			Columns: numeric("lead_type_adv_diff", "lead_type_adv", "lead_max_eff_diff"),
			Compute: func(s *BattleState, r Row) {
				p1, p2 := s.P1.Lead.Types, s.P2.Lead.Types
				r.Set("lead_type_adv_diff", gamedata.BestSTABAdvantage(p1, p2)-gamedata.BestSTABAdvantage(p2, p1))
				r.Set("lead_type_adv", gamedata.CombinedEffectiveness(p1, p2))
				r.Set("lead_max_eff_diff", gamedata.MaxEffectiveness(p1, p2)-gamedata.MaxEffectiveness(p2, p1))
			},
		},
		{
			Name:    "lead_embedding",
			Columns: numeric(append(prefixed("p1_lead_", statSuffixes[:]), prefixed("p2_lead_", statSuffixes[:])...)...),
			Compute: func(s *BattleState, r Row) {
				for _, side := range []*SideState{s.P1, s.P2} {
					emb := gamedata.Embedding(side.Lead.Name)
					for i, suffix := range statSuffixes {
						r.Set(side.Side.String()+"_lead_"+suffix, emb[i])
					}
				}
			},
		},
		{
			Name: "team_aggregates",
			Columns: numeric("p1_team_avg_atk", "p1_team_avg_spe", "p1_team_max_hp",
				"p1_team_avg_special", "p1_team_avg_bulk", "team_speed_adv_vs_lead"),
			Compute: computeTeamAggregates,
		},
		{
			Name:    "meta_threats",
			Columns: numeric("p1_team_meta_count", "p2_lead_is_meta_threat", "meta_diff"),
			Compute: func(s *BattleState, r Row) {
				count := 0.0
				for _, p := range s.Battle.P1Team {
					if gamedata.IsMetaThreat(p.Name) {
						count++
					}
				}
				lead := boolFloat(gamedata.IsMetaThreat(s.P2.Lead.Name))
				r.Set("p1_team_meta_count", count)
				r.Set("p2_lead_is_meta_threat", lead)
				r.Set("meta_diff", count-lead)
			},
		},
		{
			Name:    "team_embedding",
			Columns: numeric(append(indexed("p1_team_emb_", 3*gamedata.EmbeddingDim), indexed("p2_team_emb_", 3*gamedata.EmbeddingDim)...)...),
			Compute: func(s *BattleState, r Row) {
				for _, side := range []models.Side{models.Player1, models.Player2} {
					emb := gamedata.TeamEmbedding(s.Battle.KnownRoster(side))
					for i, v := range emb {
						r.Set(fmt.Sprintf("%s_team_emb_%d", side, i), v)
					}
				}
			},
		},
	}
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}

func indexed(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func bulk(st gamedata.Stats) float64 {
	return st.HP + st.Def + st.SpA
}

func computeLeadStatDiffs(s *BattleState, r Row) {
	a, b := s.P1.Lead.Stats(), s.P2.Lead.Stats()
	total := a.Total() - b.Total()
	speed := a.Spe - b.Spe
	r.Set("lead_hp_diff", a.HP-b.HP)
	r.Set("lead_atk_diff", a.Atk-b.Atk)
	r.Set("lead_def_diff", a.Def-b.Def)
	r.Set("lead_spa_diff", a.SpA-b.SpA)
	r.Set("lead_spd_diff", a.SpD-b.SpD)
	r.Set("lead_speed_diff", speed)
	r.Set("total_stats_diff", total)
	r.Set("stats_speed_interaction", total*speed)
}

func computeLeadRatios(s *BattleState, r Row) {
	var special, physical [2]float64
	for i, side := range []*SideState{s.P1, s.P2} {
		st := side.Lead.Stats()
		p := side.Side.String()
		r.Set("atk_def_ratio_"+p, safeDiv(st.Atk, st.Def+1))
		r.Set("hp_def_ratio_"+p, safeDiv(st.HP, st.Def+1))
		r.Set("atk_hp_ratio_"+p, safeDiv(st.Atk, st.HP+1))
		r.Set("def_hp_ratio_"+p, safeDiv(st.Def, st.HP+1))
		r.Set("hp_vs_total_stats_"+p, safeDiv(st.HP, st.Atk+st.Def+st.SpA+st.SpD+st.Spe+1))
		r.Set("lead_total_stats_"+p, st.Total())
		special[i] = st.SpA + st.SpD
		physical[i] = st.Atk + st.Def
		r.Set(p+"_lead_special_total", special[i])
		r.Set(p+"_lead_physical_total", physical[i])
	}
	p1 := s.P1.Lead.Stats()
	r.Set("hp_speed_interaction_lead", p1.HP*p1.Spe)
	r.Set("special_total_diff", special[0]-special[1])
	r.Set("physical_total_diff", physical[0]-physical[1])
}

func computeTeamAggregates(s *BattleState, r Row) {
	team := s.Battle.P1Team
	leadSpe := s.P2.Lead.Stats().Spe

	var atk, spe, special, bulkSum, maxHP, faster float64
	for i, p := range team {
		st := p.Stats()
		atk += st.Atk
		spe += st.Spe
		special += st.SpA
		bulkSum += bulk(st)
		if i == 0 || st.HP > maxHP {
			maxHP = st.HP
		}
		if st.Spe > leadSpe {
			faster++
		}
	}
	n := float64(len(team))
	r.Set("p1_team_avg_atk", safeDiv(atk, n))
	r.Set("p1_team_avg_spe", safeDiv(spe, n))
	r.Set("p1_team_max_hp", maxHP)
	r.Set("p1_team_avg_special", safeDiv(special, n))
	r.Set("p1_team_avg_bulk", safeDiv(bulkSum, n))
	r.Set("team_speed_adv_vs_lead", faster)
}
