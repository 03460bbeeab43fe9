package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/meta"
)

const bashCompletionScript = `# bash completion for lessonctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_lessonctl()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "login logout register passwd status me achievements leaderboard analytics progress stats lessons students games export profile settings dash completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    sub=${COMP_WORDS[2]}
    local common="--api --attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --schema --tldr"
    local class="--level --letter"

    case "$cmd" in
        login)
            local opts="--api --username -u --password -p"
            ;;
        register)
            local opts="--api --username -u --password -p --password-confirm --first-name --last-name --email --level --letter"
            ;;
        logout|passwd)
            local opts="--api"
            ;;
        leaderboard)
            local opts="$common $class"
            ;;
        analytics)
            local opts="$common $class --days"
            ;;
        lessons)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "list show submit" -- "$cur") )
                return 0
            fi
            local opts="$common"
            [[ $sub == submit ]] && opts="$opts --answer"
            ;;
        students)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "list stats games reset" -- "$cur") )
                return 0
            fi
            local opts="$common"
            [[ $sub == list ]] && opts="$opts $class"
            ;;
        games)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "results stats summary best leaderboard class recent submit" -- "$cur") )
                return 0
            fi
            local opts="$common"
            case "$sub" in
                results) opts="$opts --game -g --level --limit" ;;
                best) opts="$opts --game -g --level" ;;
                leaderboard) opts="$opts --game -g --level --limit" ;;
                class) opts="$opts $class" ;;
                recent) opts="$opts $class --limit" ;;
                submit) opts="$opts --game -g --level --score --max-score --time --correct --total" ;;
            esac
            ;;
        export)
            local opts="--api --format --out --s3 --s3-endpoint --profile --region $class --tldr"
            ;;
        settings)
            local opts="--api --email --level --letter"
            ;;
        dash)
            local opts="--api $class"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "csv excel" -- "$cur") )
            return 0
            ;;
        --game|-g)
            COMPREPLY=( $(compgen -W "grammar-detective sentence-builder memory-cards fill-gap-race quiz-show" -- "$cur") )
            return 0
            ;;
        --out)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _lessonctl lessonctl
`

const zshCompletionScript = `#compdef lessonctl

_lessonctl() {
  local -a cmds
  cmds=(
    'login:log in and store credentials'
    'logout:forget stored credentials'
    'register:create a student account'
    'passwd:change your password'
    'status:show the stored session'
    'me:show the logged in user'
    'achievements:list earned achievements'
    'leaderboard:show the ranking'
    'analytics:class analytics'
    'progress:show lesson progress'
    'stats:show per-lesson statistics'
    'lessons:browse lessons and submit tests'
    'students:inspect students'
    'games:game results and statistics'
    'export:download student statistics'
    'profile:summarise your account'
    'settings:update your email or class'
    'dash:interactive dashboard'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '--api[API base URL]:url'
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  '--tldr[show tldr page]'
  )

  local -a class
  class=(
  '--level[class level]:level:(1 2 3 4 5 6 7 8 9 10 11)'
  '--letter[class letter]:letter'
  )

  local -a game
  game=(
  '(-g --game)'{-g,--game}'[game type]:game:(grammar-detective sentence-builder memory-cards fill-gap-race quiz-show)'
  '--level[game level]:level'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'lessonctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    login)
      _arguments -C \
        '--api[API base URL]:url' \
        '(-u --username)'{-u,--username}'[username]:username' \
        '(-p --password)'{-p,--password}'[password]:password'
      ;;
    register)
      _arguments -C \
        '--api[API base URL]:url' \
        '(-u --username)'{-u,--username}'[username]:username' \
        '(-p --password)'{-p,--password}'[password]:password' \
        '--password-confirm[password confirmation]:password' \
        '--first-name[first name]:name' \
        '--last-name[last name]:name' \
        '--email[email address]:email' \
        $class
      ;;
    logout|passwd)
      _arguments -C '--api[API base URL]:url'
      ;;
    leaderboard)
      _arguments -C $common $class
      ;;
    analytics)
      _arguments -C $common $class '--days[activity period]:days'
      ;;
    lessons)
      if (( CURRENT == 3 )); then
        _values 'lessons command' list show submit
        return
      fi
      _arguments -C $common '*--answer[QUESTION=OPTION]:answer'
      ;;
    students)
      if (( CURRENT == 3 )); then
        _values 'students command' list stats games reset
        return
      fi
      _arguments -C $common $class
      ;;
    games)
      if (( CURRENT == 3 )); then
        _values 'games command' results stats summary best leaderboard class recent submit
        return
      fi
      case $words[3] in
        results|leaderboard)
          _arguments -C $common $game '--limit[limit results]:limit'
          ;;
        best)
          _arguments -C $common $game
          ;;
        class)
          _arguments -C $common $class
          ;;
        recent)
          _arguments -C $common $class '--limit[limit results]:limit'
          ;;
        submit)
          _arguments -C $common $game \
            '--score[points scored]:score' \
            '--max-score[maximum points]:score' \
            '--time[seconds spent]:seconds' \
            '--correct[correct answers]:count' \
            '--total[total questions]:count'
          ;;
        *)
          _arguments -C $common
          ;;
      esac
      ;;
    export)
      _arguments -C \
        '--api[API base URL]:url' \
        '--format[file format]:format:(csv excel)' \
        '--out[output file]:file:_files' \
        '--s3[upload to]:url' \
        '--s3-endpoint[S3 endpoint]:url' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        $class
      ;;
    settings)
      _arguments -C '--api[API base URL]:url' '--email[email address]:email' $class
      ;;
    dash)
      _arguments -C '--api[API base URL]:url' $class
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _lessonctl lessonctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(cmd)
	switch shell := cmd.Args().First(); shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	case "":
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: lessonctl completion [bash|zsh]")
		}
	default:
		return fmt.Errorf("unsupported shell %q (want bash or zsh)", shell)
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "lessonctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
