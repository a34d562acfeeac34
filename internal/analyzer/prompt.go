package analyzer

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are an expert personal trainer. Analyze these %d photo(s) of a workout environment.

TASK 1 - EQUIPMENT DETECTION:
Identify ALL workout equipment, furniture, or environmental features that could be used for exercise. Be creative and thorough. Include:
- Traditional gym equipment (dumbbells, barbells, machines, etc.)
- Bodyweight workout areas (open floor space, walls, stairs, etc.)
- Improvised equipment (chairs, tables, countertops, sturdy furniture, etc.)
- Outdoor features (benches, bars, hills, etc.)

TASK 2 - WORKOUT ROUTINE:
Create a detailed %d-minute workout routine for a %s level fitness enthusiast.
Focus on: %s

Include:
- Warm-up (3-5 minutes)
- Main workout with specific exercises
- For each exercise: name, sets, reps/duration, and brief form tips
- Cool-down/stretch (3-5 minutes)

Respond in this EXACT JSON format:
{
  "equipment": ["item1", "item2", ...],
  "workout": {
    "warmup": [
      {"name": "exercise name", "duration": "X minutes", "description": "brief description"}
    ],
    "main": [
      {"name": "exercise name", "sets": X, "reps": "X reps or X seconds", "equipment": "what to use", "tips": "form tips"}
    ],
    "cooldown": [
      {"name": "stretch name", "duration": "X seconds", "description": "brief description"}
    ]
  },
  "notes": "Any important safety notes or modifications"
}

CRITICAL: Respond ONLY with valid JSON. No markdown, no code blocks, no explanation text.`

// buildPrompt renders the single structured instruction sent alongside the
// image blocks.
func buildPrompt(req Request) string {
	return fmt.Sprintf(promptTemplate,
		len(req.Images),
		req.Duration,
		req.FitnessLevel,
		strings.Join(req.Types.Enabled(), ", "),
	)
}
