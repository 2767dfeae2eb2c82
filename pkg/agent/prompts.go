package agent

const systemPrompt = `You are playing Pokemon Red. You can see the game screen and control the game by executing emulator commands.

Your goal is to play through Pokemon Red and eventually defeat the Elite Four. Make decisions based on what you see on the screen and the memory-based game state description.

At the very beginning of the game, you may see boot or title/intro screens. In those cases, you often need to press START and/or A multiple times to get to a playable state (the main game where you can move the character around). If the game appears idle or you are not yet in control of the player, try pressing START or A to proceed.

Before each action, explain your reasoning briefly, then use the available tools to execute your chosen commands.

The conversation history may occasionally be summarized to save context space. If you see a message labeled "CONVERSATION HISTORY SUMMARY", this contains the key information about your progress so far. Use this information to maintain continuity in your gameplay.`

const summaryPrompt = `I need you to create a detailed summary of our conversation history up to this point. This summary will replace the full conversation history to manage the context window.

Please include:
1. Key game events and milestones you've reached
2. Important decisions you've made
3. Current objectives or goals you're working toward
4. Your current location and Pokémon team status
5. Any strategies or plans you've mentioned

The summary should be comprehensive enough that you can continue gameplay without losing important context about what has happened so far.`

const (
	observationPrompt = "Here is the current game state from memory and a screenshot of the game screen. Use the tools to decide what to do next.\n\nGAME STATE:\n%s"
	openingPrompt     = "You may now begin playing."
	continuePrompt    = "You were just asked to summarize your playthrough so far, which is the summary you see above. You may now continue playing by selecting your next action."
	summaryLabel      = "CONVERSATION HISTORY SUMMARY (representing %d previous messages): %s"
)
