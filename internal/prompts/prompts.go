package prompts

// ============================================================================
// Style Analysis
// ============================================================================

// StyleSystemPrompt frames the voice analysis call.
const StyleSystemPrompt = `You are an expert social media analyst who identifies writing patterns that drive engagement while maintaining authenticity.`

// StyleUserPrompt takes the enumerated previous posts.
const StyleUserPrompt = `Analyze these previous posts to understand their unique writing style and voice.

PREVIOUS POSTS:
%s

Provide analysis in JSON format with voice_characteristics, engagement_patterns, writing_structure, and vocabulary_style.`

// ============================================================================
// Variation Drafting
// ============================================================================

// VariationSystemPrompt takes the pipeline type.
const VariationSystemPrompt = `You are an expert viral %s content creator who creates engaging social media content.`

// VariationUserPrompt takes pipeline type, extra requirements, approach, raw thoughts and style JSON.
const VariationUserPrompt = `You are an expert viral social media copywriter. Create a %s tweet that is:

✅ Emotionally striking (humor, vulnerability, or mild controversy)
✅ Reads like something a real person would post
✅ Stays under 280 characters
✅ Uses simple, clear, natural language
✅ Safe for work and platform-compliant
✅ NO hashtags - only regular words
%s

APPROACH: %s
RAW THOUGHTS: "%s"
USER STYLE: %s

Return JSON with: content, approach, viral_elements, engagement_prediction, target_emotion, character_count`

// MemeRequirements takes the lowercased meme style three times around the cultural context.
const MemeRequirements = `✅ EXTREMELY FUNNY and MEME-WORTHY with %s humor
%s
✅ Uses relatable exaggeration typical of %s memes
✅ Follows viral %s meme best practices
✅ Should work perfectly with visual meme templates`

// IndianCulturalContext is the humor register for the Indian meme style.
const IndianCulturalContext = `Uses Indian cultural references, daily situations, and relatable Indian experiences. Incorporates popular Indian meme formats and jokes use Hindi and Hinglish but stay in the boundary of user thoughts/input and very funny and dank meme if needed.`

// GlobalCulturalContext is the humor register for the Global meme style.
const GlobalCulturalContext = `Uses global cultural references and universally relatable situations. Incorporates popular international meme formats and jokes which are famous globally make it funny, dank joke or double meaning when needed.`

// SimpleRequirements replaces the meme block for the simple pipeline.
const SimpleRequirements = `✅ Professional yet engaging tone
✅ Clear value proposition
✅ Universally relatable content`

// ============================================================================
// Selection
// ============================================================================

// SelectionSystemPrompt frames the best-variation judgment.
const SelectionSystemPrompt = `You are an expert content strategist who evaluates social media content. Return only valid JSON.`

// SelectionUserPrompt takes raw thoughts, style JSON and variations JSON.
const SelectionUserPrompt = `Select the best tweet variation based on authenticity, viral potential, and message alignment.

ORIGINAL THOUGHTS: "%s"
STYLE: %s
VARIATIONS: %s

Return JSON with best_variation containing: index, content, approach, total_score, why_selected`

// ============================================================================
// Metadata
// ============================================================================

// NicheSystemPrompt constrains niche classification to one word.
const NicheSystemPrompt = `You are an expert content analyzer. Identify the main niche/topic of the given content. Return only one word - the best-matching PRIMARY niche like: technology, finance, health, fitness, travel, food, lifestyle, entertainment, education, work, relationships, business, sports, gaming, art, music, etc.`

// PostTimesSystemPrompt frames the posting window call.
const PostTimesSystemPrompt = `You are a social media growth strategist and twitter/x expert.`

// PostTimesUserPrompt takes formatted now, timezone, platform and niche.
const PostTimesUserPrompt = `As of now (%s, %s), suggest the next 3 best times to post on %s for the '%s' niche to get maximum engagement or go viral. Only include times that are upcoming (i.e., later today or this week). Respond with only the times in short bullet point format, no extra text or intro, try to use minimum text.`

// SEOSystemPrompt frames keyword extraction.
const SEOSystemPrompt = `You are an expert in SEO keyword extraction.`

// SEOUserPrompt takes the keyword count and the post.
const SEOUserPrompt = `From the following tweet, extract %d SEO-friendly keywords that could be useful for search optimization. Focus on meaningful words like nouns, adjectives, and relevant verbs. Ignore common stop words. Return only the keywords in plain text, one per line, no explanations.

Tweet: %s`

// ============================================================================
// Meme Template Matching
// ============================================================================

// FeatureSystemPrompt frames tweet feature extraction.
const FeatureSystemPrompt = `You are an expert in meme analysis and social media content structure. Analyze content for meme template matching. Return only valid JSON.`

// FeatureUserPrompt takes the post.
const FeatureUserPrompt = `Analyze this tweet and extract key features for meme template matching:

TWEET: "%s"

Extract and return JSON with:
- primary_emotion: main emotion conveyed
- content_type: type of content (complaint, comparison, observation, etc.)
- key_concepts: list of main concepts/themes
- conflict_elements: any conflicting elements or tensions
- humor_type: type of humor (sarcasm, irony, observational, etc.)
- requires_visual_elements: what visual elements would enhance this
- meme_potential_keywords: keywords that suggest meme template types`

// ArbitrationSystemPrompt frames the final template pick.
const ArbitrationSystemPrompt = `You are an expert meme creator who understands viral content patterns and visual storytelling. Return only valid JSON.`

// ArbitrationUserPrompt takes the post, features JSON and candidates JSON.
const ArbitrationUserPrompt = `Select the BEST meme template for this tweet from the top candidates:

TWEET: "%s"
TWEET FEATURES: %s

TOP CANDIDATES:
%s

Consider:
1. Which template structure best fits the tweet's message
2. Which would create the most engaging visual
3. Which template format suits the content type
4. Which has the highest viral potential

Return JSON with:
- selected_template: name of chosen template
- confidence_score: 0-100 confidence in selection
- visual_adaptation: how the tweet should be adapted to this template
- why_selected: detailed reasoning for selection`

// ============================================================================
// Image Direction
// ============================================================================

// CharacterPrompt takes the character prompt, art style, character prompt and art style.
const CharacterPrompt = `Create a character perfect for social media meme content: %s

Art Style: %s

Requirements:
- High quality and detailed artwork
- Clear, well-defined character features
- Expressive face suitable for various emotions and meme expressions
- Professional composition and lighting
- Character should be the main focus with consistency of details
- Background should be simple or easily removable for meme templates
- Perfect execution of the specified art style
- Character should be versatile for different meme scenarios
- NO TEXT on the image - pure character artwork

Character: %s
Style: %s`

// TemplateDirective pins the action image to a template. Takes name, structure,
// layout, format, visual adaptation and name again.
const TemplateDirective = `CRITICAL: This MUST follow the %s meme template EXACTLY:

TEMPLATE STRUCTURE: %s
LAYOUT REQUIREMENTS: %s
TEMPLATE FORMAT: %s
VISUAL ADAPTATION: %s

MANDATORY TEMPLATE ADHERENCE:
- Follow the exact visual structure of %s
- Use the specific layout requirements provided
- Maintain the template's characteristic composition
- Ensure the meme format is instantly recognizable
- DO NOT deviate from the template structure`

// ActionEditPrompt takes template name, post, directive, name, art style, name,
// post, art style and name.
const ActionEditPrompt = `Transform this character to create a %s meme based on: "%s"

%s

EDITING REQUIREMENTS:
- Keep character's original appearance exactly the same
- Maintain the details of the characters accurately
- Make character fit perfectly into the %s template structure
- Follow the template's visual composition precisely
- %s
- The image must be instantly recognizable as a %s meme
- Include minimal, strategic text that enhances the meme. DO NOT PASTE ALL THE TEXT OF THE TWEET ON IMAGE DIRECTLY.
- Ensure professional funny meme quality

Tweet Content: %s
Character Style: %s
Template: %s`

// ActionGeneratePrompt takes name, character prompt, post, directive, character
// prompt, art style, name and name.
const ActionGeneratePrompt = `Create a %s meme featuring this character: %s

Tweet Content: "%s"

%s

GENERATION REQUIREMENTS:
- Character: %s
- Art Style: %s
- MUST follow %s template structure EXACTLY
- Professional meme quality with high detail
- Include strategic text that enhances the meme message
- Background and composition must match template requirements
- The final image must be instantly recognizable as a %s meme
- Ensure viral meme potential
- Have boundaries and make sure everything comes inside that only. No content should go out of the 1024x1024 box`

// DefaultArtStyle is used when character data carries no style.
const DefaultArtStyle = "High quality artwork"
