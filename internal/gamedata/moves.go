package gamedata

// Move and roster categories. Keys are normalized (lower-case) names.
var (
	statusMoves = nameSet("Thunder Wave", "Sleep Powder", "Sing", "Toxic", "Lovely Kiss", "Spore", "Stun Spore", "Glare")
	setupMoves  = nameSet("Amnesia", "Swords Dance", "Agility", "Growth")
	keyAttacks  = nameSet(
		"Body Slam", "Hyper Beam", "Earthquake", "Blizzard",
		"Ice Beam", "Thunderbolt", "Rock Slide", "Surf",
		"Self-Destruct", "Explosion",
	)

	// Gen 1 OU S/A tier.
	metaThreats = nameSet(
		"Snorlax", "Tauros", "Chansey", "Alakazam", "Starmie", "Exeggutor",
		"Zapdos", "Jolteon", "Rhydon", "Golem", "Lapras",
	)

	// Leads whose identity carries little signal; grouped as "Other".
	lowSignalLeads = nameSet(
		"Articuno", "Golem", "Rhydon", "Lapras", "Cloyster",
		"Charizard", "Victreebel", "Dragonite", "Gengar", "Persian",
	)
)

// OtherLeadGroup is the categorical value used for low-signal leads.
const OtherLeadGroup = "Other"

func nameSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[NormalizeName(n)] = struct{}{}
	}
	return m
}

func inSet(set map[string]struct{}, name string) bool {
	_, ok := set[NormalizeName(name)]
	return ok
}

// IsStatusMove reports whether the move inflicts a major status condition.
func IsStatusMove(name string) bool { return inSet(statusMoves, name) }

// IsSetupMove reports whether the move boosts the user's stats.
func IsSetupMove(name string) bool { return inSet(setupMoves, name) }

// IsKeyAttack reports whether the move is one of the high-impact attacks.
func IsKeyAttack(name string) bool { return inSet(keyAttacks, name) }

// IsMetaThreat reports whether the species is in the meta-threat roster.
func IsMetaThreat(name string) bool { return inSet(metaThreats, name) }

// LeadGroup returns the lead's name, or OtherLeadGroup for low-signal leads.
func LeadGroup(name string) string {
	if inSet(lowSignalLeads, name) {
		return OtherLeadGroup
	}
	return name
}
