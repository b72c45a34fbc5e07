package repository

import "github.com/mergington/activities/internal/domain/model"

// DefaultActivities returns the activities offered at process start.
// Each call returns a fresh table.
func DefaultActivities() map[string]model.Activity {
	return map[string]model.Activity{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		"Gym Class": {
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		"Basketball Team": {
			Description:     "Practice drills and compete in inter-school basketball games",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
		},
		"Tennis Club": {
			Description:     "Improve your serve and play singles and doubles matches",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 10,
			Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
		},
		"Art Studio": {
			Description:     "Explore painting, drawing and sculpture in the school studio",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
		},
		"Drama Club": {
			Description:     "Act, direct and stage the school's seasonal productions",
			Schedule:        "Mondays and Thursdays, 3:30 PM - 5:30 PM",
			MaxParticipants: 25,
			Participants:    []string{"ella@mergington.edu", "lucas@mergington.edu"},
		},
		"Debate Team": {
			Description:     "Build argumentation skills and compete in debate tournaments",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 16,
			Participants:    []string{"henry@mergington.edu", "grace@mergington.edu"},
		},
		"Science Olympiad": {
			Description:     "Prepare for regional science competitions with hands-on experiments",
			Schedule:        "Fridays, 2:00 PM - 4:00 PM",
			MaxParticipants: 14,
			Participants:    []string{"jack@mergington.edu", "chloe@mergington.edu"},
		},
	}
}
