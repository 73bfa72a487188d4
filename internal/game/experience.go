package game

// MaxLevel is the highest level a character can reach.
const MaxLevel = 20

// levelTable holds the cumulative XP required to reach each level.
// Index 0 = level 1 (0 XP), index 1 = level 2, etc. XP here comes one point
// per point of damage dealt, so the curve is much flatter than a tabletop one.
var levelTable = [MaxLevel]int{
	0,     // Level 1
	50,    // Level 2
	120,   // Level 3
	220,   // Level 4
	360,   // Level 5
	550,   // Level 6
	800,   // Level 7
	1120,  // Level 8
	1520,  // Level 9
	2010,  // Level 10
	2600,  // Level 11
	3300,  // Level 12
	4120,  // Level 13
	5070,  // Level 14
	6160,  // Level 15
	7400,  // Level 16
	8800,  // Level 17
	10370, // Level 18
	12120, // Level 19
	14060, // Level 20
}

// XPForLevel returns the cumulative XP required to reach the given level.
func XPForLevel(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		return levelTable[MaxLevel-1]
	}
	return levelTable[level-1]
}

// LevelForXP returns the level a character with the given cumulative XP holds.
func LevelForXP(xp int) int {
	level := 1
	for l := MaxLevel; l >= 1; l-- {
		if xp >= levelTable[l-1] {
			level = l
			break
		}
	}
	return level
}

// XPToNextLevel returns the remaining XP needed to reach the next level.
func XPToNextLevel(level, xp int) int {
	if level >= MaxLevel {
		return 0
	}
	remaining := XPForLevel(level+1) - xp
	if remaining < 0 {
		return 0
	}
	return remaining
}
